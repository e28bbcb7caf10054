package validate

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrCurrencyChars is returned for any character outside digits, comma, dot.
	ErrCurrencyChars = errors.New("amount may only contain digits, dot and comma")
	// ErrCurrencyCommas is returned when more than one decimal comma is present.
	ErrCurrencyCommas = errors.New("amount must have at most one comma")
	// ErrCurrencyCents is returned when more than 2 digits follow the comma.
	ErrCurrencyCents = errors.New("amount must have at most 2 digits after the comma")
	// ErrCurrencyLeadingGroup is returned when the group before the first dot
	// is empty or longer than 3 digits.
	ErrCurrencyLeadingGroup = errors.New("group before the first dot must have 1 to 3 digits")
	// ErrCurrencyGroupSize is returned when a later thousands group is not
	// exactly 3 digits.
	ErrCurrencyGroupSize = errors.New("each thousands group after a dot must have exactly 3 digits")
)

// ValidateCurrency checks Brazilian-locale numeric input: dot as thousands
// separator, comma as decimal separator. Empty or whitespace-only input is
// valid and means "unset".
func ValidateCurrency(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != ',' && r != '.' {
			return ErrCurrencyChars
		}
	}
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return ErrCurrencyCommas
	}
	if len(parts) == 2 && len(parts[1]) > 2 {
		return ErrCurrencyCents
	}
	groups := strings.Split(parts[0], ".")
	if len(groups[0]) < 1 || len(groups[0]) > 3 {
		return ErrCurrencyLeadingGroup
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return ErrCurrencyGroupSize
		}
	}
	return nil
}

// ParseCurrency converts Brazilian-locale input into a decimal amount. It is
// total over its domain: empty and malformed inputs both parse to zero, so a
// value a user is still typing never breaks the running-balance pass.
func ParseCurrency(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	normalized := strings.ReplaceAll(s, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatCurrency renders a decimal amount back into the display form the
// validators accept: thousands dots and a 2-digit comma fraction.
func FormatCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	groups := make([]string, 0, len(intPart)/3+1)
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	return sign + strings.Join(groups, ".") + "," + frac
}
