// Package validate holds the pure field validators for statement data:
// CNPJ identifiers, ISO dates and Brazilian-locale currency strings.
package validate

import (
	"errors"
	"strings"
)

var (
	// ErrCNPJLength is returned when the stripped input has a length other than 14.
	ErrCNPJLength = errors.New("CNPJ must have 14 digits")
	// ErrCNPJRepeated is returned for known-invalid sequences like 11111111111111.
	ErrCNPJRepeated = errors.New("CNPJ cannot repeat a single digit 14 times")
	// ErrCNPJChecksum covers both check digits; callers get one shared message.
	ErrCNPJChecksum = errors.New("invalid CNPJ (check the numbers)")
)

// ValidateCNPJ checks a Brazilian company tax ID. Empty input is accepted:
// whether the field is required at all is the caller's rule, not this
// function's. All non-digit characters are stripped before checking.
func ValidateCNPJ(s string) error {
	digits := OnlyDigits(s)
	if digits == "" {
		return nil
	}
	if len(digits) != 14 {
		return ErrCNPJLength
	}
	if strings.Count(digits, digits[:1]) == 14 {
		return ErrCNPJRepeated
	}
	if checkDigit(digits[:12]) != int(digits[12]-'0') {
		return ErrCNPJChecksum
	}
	if checkDigit(digits[:13]) != int(digits[13]-'0') {
		return ErrCNPJChecksum
	}
	return nil
}

// checkDigit computes a mod-11 check digit with weights cycling 2..9
// right-to-left over digits.
func checkDigit(digits string) int {
	weight := 2
	sum := 0
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

// OnlyDigits strips everything but ASCII digits.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCNPJ renders digits into the punctuated display form
// NN.NNN.NNN/NNNN-NN. Partial input yields a partial mask, which makes it
// usable for live typing. It performs no validation.
func FormatCNPJ(s string) string {
	digits := OnlyDigits(s)
	if len(digits) > 14 {
		digits = digits[:14]
	}
	var b strings.Builder
	for i := 0; i < len(digits); i++ {
		switch i {
		case 2, 5:
			b.WriteByte('.')
		case 8:
			b.WriteByte('/')
		case 12:
			b.WriteByte('-')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}
