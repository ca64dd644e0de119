package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/listing"
)

func TestListSendsQueryAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/customers" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("auth header = %q", got)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("page_size") != "5" || q.Get("search") != "ana" {
			t.Errorf("unexpected query: %v", q)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"rows":       []domain.Customer{{Meta: domain.Meta{ID: "c1"}, Name: "Ana"}},
			"totalCount": 6,
		})
	}))
	defer srv.Close()

	gw := New[domain.Customer](srv.URL, "customers", "tok123")
	page, err := gw.List(context.Background(), listing.Query{Page: 2, PageSize: 5, Search: "ana"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 6 || len(page.Rows) != 1 || page.Rows[0].Name != "Ana" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestInsertRoundTrips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var c domain.Customer
		json.NewDecoder(r.Body).Decode(&c)
		c.ID = "srv-id"
		c.Active = true
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(c)
	}))
	defer srv.Close()

	gw := New[domain.Customer](srv.URL, "customers", "")
	created, err := gw.Insert(context.Background(), domain.Customer{Name: "Ana", Email: "ana@x.com", Mobile: "119"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if created.ID != "srv-id" || !created.Active {
		t.Fatalf("server row not returned: %+v", created)
	}
}

func TestErrorCodesBecomeDomainErrors(t *testing.T) {
	cases := []struct {
		code   string
		status int
		check  func(error) bool
	}{
		{"permission_denied", http.StatusForbidden, domain.IsPermissionDenied},
		{"not_found", http.StatusNotFound, domain.IsNotFound},
		{"validation_error", http.StatusBadRequest, domain.IsValidation},
		{"conflict", http.StatusConflict, domain.IsConflict},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			fmt.Fprintf(w, `{"error":"msg","code":%q}`, tc.code)
		}))

		gw := New[domain.Customer](srv.URL, "customers", "")
		err := gw.Delete(context.Background(), "x")
		if err == nil || !tc.check(err) {
			t.Errorf("code %s: error %v not mapped", tc.code, err)
		}
		srv.Close()
	}
}

func TestSettleNotSettleable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"entidade não possui baixa/recebimento","code":"not_settleable"}`))
	}))
	defer srv.Close()

	gw := New[domain.Customer](srv.URL, "customers", "")
	_, err := gw.Settle(context.Background(), "x", time.Now())
	if err != listing.ErrNotSettleable {
		t.Fatalf("err = %v, want ErrNotSettleable", err)
	}
}

func TestSubscribeDeliversChanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("collection"); got != "customers" {
			t.Errorf("collection = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "event:change\ndata:{\"kind\":\"update\",\"collection\":\"customers\"}\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	sub := NewSubscriber(srv.URL, "tok")
	ch, cancel, err := sub.Subscribe(context.Background(), "customers")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	select {
	case change := <-ch:
		if change.Kind != listing.ChangeUpdate || change.Collection != "customers" {
			t.Fatalf("unexpected change: %+v", change)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}
}
