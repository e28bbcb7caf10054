package validate

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

var (
	// ErrDateBlank: unlike the CNPJ validator, an empty date is an error here.
	// The date column is always required; the identifier column is not.
	ErrDateBlank = errors.New("date must not be blank")
	// ErrDateFormat is returned when the input is not shaped like YYYY-MM-DD.
	ErrDateFormat = errors.New("wrong date format, use YYYY-MM-DD")
	// ErrDateInvalid is returned for well-shaped but non-existent dates.
	ErrDateInvalid = errors.New("invalid date (e.g., day 31 in a 30-day month)")
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDate checks that s is a real proleptic-Gregorian calendar date in
// canonical YYYY-MM-DD form. It is purely local: callers that want a
// correction proposal for an invalid value ask the date-correction oracle
// separately.
func ValidateDate(s string) error {
	if s == "" {
		return ErrDateBlank
	}
	if !datePattern.MatchString(s) {
		return ErrDateFormat
	}
	year, _ := strconv.Atoi(s[:4])
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])

	// time.Date normalizes out-of-range components (month 13 becomes January
	// of the next year), so a round-trip mismatch means the date does not
	// exist. UTC keeps the check independent of the host timezone.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return ErrDateInvalid
	}
	return nil
}
