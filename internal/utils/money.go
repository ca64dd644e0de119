package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCentavos renders an integer amount of centavos as "R$ 1.234,56".
func FormatCentavos(centavos int64) string {
	sign := ""
	if centavos < 0 {
		sign = "-"
		centavos = -centavos
	}
	reais := centavos / 100
	cents := centavos % 100
	return fmt.Sprintf("%sR$ %s,%02d", sign, formatThousand(reais), cents)
}

// ParseCentavos parses "R$ 1.234,56", "1.234,56" or "1234" into centavos.
// Entrada sem vírgula é tratada como reais inteiros.
func ParseCentavos(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(strings.ToUpper(s), "R$")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("valor monetário inválido")
	}

	intPart := s
	centPart := "00"
	if i := strings.IndexByte(s, ','); i >= 0 {
		intPart = s[:i]
		centPart = s[i+1:]
		if len(centPart) == 1 {
			centPart += "0"
		}
		if len(centPart) != 2 {
			return 0, fmt.Errorf("valor monetário inválido: %q", s)
		}
	}
	if intPart == "" {
		intPart = "0"
	}

	reais, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("valor monetário inválido: %q", s)
	}
	cents, err := strconv.ParseInt(centPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("valor monetário inválido: %q", s)
	}

	total := reais*100 + cents
	if neg {
		total = -total
	}
	return total, nil
}

// FormatAmount normalizes a money input string into display form.
// Idempotente: FormatAmount(FormatAmount(s)) == FormatAmount(s).
func FormatAmount(s string) string {
	c, err := ParseCentavos(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return FormatCentavos(c)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
