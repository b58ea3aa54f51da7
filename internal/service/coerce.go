package service

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The legacy write path never rejected non-numeric price/stock/experience
// input; it parsed whatever prefix of the string looked like a number. These
// helpers keep that contract. An input with no numeric prefix coerces to
// zero, since the JSON persistence layout cannot carry NaN.

func coerceFloat(v interface{}) float64 {
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
			return coerceFloat(n.String())
		}
		return f
	case string:
		prefix := numericPrefix(n, true)
		if prefix == "" {
			return 0
		}
		f, err := strconv.ParseFloat(prefix, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceInt(v interface{}) int {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		return coerceInt(n.String())
	case string:
		prefix := numericPrefix(n, false)
		if prefix == "" {
			return 0
		}
		i, err := strconv.Atoi(prefix)
		if err != nil {
			// Integer prefix of a float string truncates ("12.9" -> 12).
			if f, ferr := strconv.ParseFloat(prefix, 64); ferr == nil {
				return int(f)
			}
			return 0
		}
		return i
	default:
		return 0
	}
}

// numericPrefix returns the longest leading run of s that reads as a number:
// optional sign, digits, and (when allowDot) a single decimal point.
func numericPrefix(s string, allowDot bool) string {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit := false
	seenDot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
		case (r == '-' || r == '+') && i == 0:
			end = i + 1
		case r == '.' && allowDot && !seenDot:
			seenDot = true
			end = i + 1
		default:
			if seenDigit {
				goto done
			}
			return ""
		}
	}
done:
	prefix := strings.TrimRight(s[:end], ".")
	if !seenDigit {
		return ""
	}
	return prefix
}
