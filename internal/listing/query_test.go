package listing

import "testing"

func TestTotalPages(t *testing.T) {
	cases := []struct{ total, size, want int }{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{12, 5, 3},
		{5, 0, 1},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.size); got != c.want {
			t.Fatalf("TotalPages(%d,%d) = %d, want %d", c.total, c.size, got, c.want)
		}
	}
}

func TestQueryOffset(t *testing.T) {
	if got := (Query{Page: 1, PageSize: 20}).Offset(); got != 0 {
		t.Fatalf("offset página 1 = %d", got)
	}
	if got := (Query{Page: 3, PageSize: 5}).Offset(); got != 10 {
		t.Fatalf("offset página 3 = %d", got)
	}
	if got := (Query{Page: 0, PageSize: 5}).Offset(); got != 0 {
		t.Fatalf("offset página inválida = %d", got)
	}
}

func TestValidPageSize(t *testing.T) {
	for _, n := range PageSizes {
		if !ValidPageSize(n) {
			t.Fatalf("%d deveria ser válido", n)
		}
	}
	if ValidPageSize(7) || ValidPageSize(0) {
		t.Fatalf("tamanhos fora do conjunto aceitos")
	}
}
