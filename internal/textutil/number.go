package textutil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MaxQty caps coerced quantities so sums stay far from overflow
const MaxQty = math.MaxInt32

// ToNumber parses a currency-formatted cell such as "$1,234.50" or "12,5".
//
// Everything except digits, commas, periods and minus signs is dropped.
// All periods but the last are treated as thousands separators, as is any
// comma followed by exactly three digits. A remaining comma is the decimal
// separator. Unparseable or non-finite results yield 0.
func ToNumber(s string) float64 {
	var kept []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || c == ',' || c == '.' || c == '-' {
			kept = append(kept, c)
		}
	}

	last := strings.LastIndexByte(string(kept), '.')
	dotless := make([]byte, 0, len(kept))
	for i, c := range kept {
		if c == '.' && i != last {
			continue
		}
		dotless = append(dotless, c)
	}

	cleaned := make([]byte, 0, len(dotless))
	for i, c := range dotless {
		if c == ',' && isThousandsComma(dotless, i) {
			continue
		}
		cleaned = append(cleaned, c)
	}

	out := strings.Replace(string(cleaned), ",", ".", 1)
	if out == "" {
		return 0
	}
	n, err := strconv.ParseFloat(out, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// isThousandsComma reports whether the comma at i is followed by exactly
// three digits and then a non-digit or the end of input.
func isThousandsComma(b []byte, i int) bool {
	if i+3 >= len(b) {
		return false
	}
	for j := i + 1; j <= i+3; j++ {
		if !isDigit(b[j]) {
			return false
		}
	}
	return i+4 == len(b) || !isDigit(b[i+4])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// NumberFrom coerces a loosely typed value: numbers pass through, strings
// go through ToNumber, nil and anything else become 0.
func NumberFrom(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return ToNumber(n.String())
		}
		return f
	case string:
		return ToNumber(n)
	default:
		return 0
	}
}

// ClampQty forces a quantity into [1, MaxQty]
func ClampQty(q int) int {
	if q < 1 {
		return 1
	}
	if q > MaxQty {
		return MaxQty
	}
	return q
}

// ToQty coerces request input to a quantity of at least 1. Fractions are
// truncated; non-numeric input becomes 1.
func ToQty(v any) int {
	var f float64
	switch n := v.(type) {
	case nil:
		return 1
	case int:
		return ClampQty(n)
	case int64:
		if n > MaxQty {
			return MaxQty
		}
		return ClampQty(int(n))
	case float64:
		f = n
	case float32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 1
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 1
		}
		f = parsed
	default:
		return 1
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	f = math.Trunc(f)
	if f >= MaxQty {
		return MaxQty
	}
	return ClampQty(int(f))
}
