// Monetary conversion helpers. The upstream sends money as decimal strings
// ("12.50"), occasionally as raw JSON numbers. Everything is converted to
// integer minor units at the boundary; no float ever carries a currency
// amount into the data layer.
package webhook

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MinorUnits converts a decimal amount string to integer minor units
// (two decimal places). The conversion is pure integer arithmetic: the
// string is split on the decimal point and the fractional part is rounded
// half away from zero to the nearest minor unit.
//
//	MinorUnits("12.50")  -> 1250
//	MinorUnits("12.505") -> 1251
//	MinorUnits("-3.1")   -> -310
//	MinorUnits("49")     -> 4900
//
// An empty or non-numeric string returns an error.
func MinorUnits(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	var cents int64
	if fracPart != "" {
		for _, r := range fracPart {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("invalid amount %q", s)
			}
		}
		// First two fractional digits are the minor units; the third digit
		// decides rounding (half away from zero).
		padded := fracPart + "00"
		cents = int64(padded[0]-'0')*10 + int64(padded[1]-'0')
		if len(fracPart) > 2 && padded[2] >= '5' {
			cents++
		}
	}

	total := whole*100 + cents
	if neg {
		total = -total
	}
	return total, nil
}

// MoneyMinor converts an arbitrary decoded JSON payload value holding a
// monetary amount into minor units. See moneyMinor for the conversion rules.
func MoneyMinor(v any) (int64, bool) { return moneyMinor(v) }

// moneyMinor converts an arbitrary decoded JSON value holding a monetary
// amount into minor units. Strings and json.Number values go through the
// integer decimal path; a raw float64 (payload decoded without UseNumber)
// is formatted back to its shortest decimal representation first so the
// rounding rule stays in integer math.
func moneyMinor(v any) (int64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case string:
		n, err := MinorUnits(x)
		return n, err == nil
	case json.Number:
		n, err := MinorUnits(x.String())
		return n, err == nil
	case float64:
		n, err := MinorUnits(strconv.FormatFloat(x, 'f', -1, 64))
		return n, err == nil
	case int64:
		return x * 100, true
	case int:
		return int64(x) * 100, true
	default:
		return 0, false
	}
}
