package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a numeric cell exactly.
// It accepts thousands separators and accounting negatives such as "(1,250.50)".
func ParseDecimal(val string) (decimal.Decimal, error) {
	s := strings.TrimSpace(val)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric value %q: %w", val, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ToInt64 truncates d to a whole number. Values outside the int64 range are an error.
func ToInt64(d decimal.Decimal) (int64, error) {
	n := d.BigInt()
	if !n.IsInt64() {
		return 0, fmt.Errorf("value %s overflows int64", d.String())
	}
	return n.Int64(), nil
}

// ToFloat converts a numeric cell to float64.
func ToFloat(val string) (float64, error) {
	d, err := ParseDecimal(val)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ToString converts various types to string.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts a flag cell to bool.
// It accepts "1", "true", "yes" and "y" in any case.
func ToBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
