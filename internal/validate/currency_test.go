package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateCurrency(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: nil},
		{name: "whitespace only", input: "   ", wantErr: nil},
		{name: "plain digits", input: "150", wantErr: nil},
		{name: "with cents", input: "150,75", wantErr: nil},
		{name: "one cent digit", input: "150,7", wantErr: nil},
		{name: "thousands group", input: "1.234,56", wantErr: nil},
		{name: "two thousands groups", input: "12.345.678,90", wantErr: nil},
		{name: "letters", input: "abc", wantErr: ErrCurrencyChars},
		{name: "currency symbol", input: "R$ 100", wantErr: ErrCurrencyChars},
		{name: "negative sign", input: "-100", wantErr: ErrCurrencyChars},
		{name: "two commas", input: "1,2,3", wantErr: ErrCurrencyCommas},
		{name: "three cent digits", input: "1,234", wantErr: ErrCurrencyCents},
		{name: "leading group too long", input: "1234,56", wantErr: ErrCurrencyLeadingGroup},
		{name: "leading group empty", input: ",56", wantErr: ErrCurrencyLeadingGroup},
		{name: "short thousands group", input: "1.23,45", wantErr: ErrCurrencyGroupSize},
		{name: "group of one digit", input: "12.3,45", wantErr: ErrCurrencyGroupSize},
		{name: "long thousands group", input: "1.2345,00", wantErr: ErrCurrencyGroupSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCurrency(tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "thousands and cents", input: "1.234,56", want: "1234.56"},
		{name: "plain integer", input: "500", want: "500"},
		{name: "cents only input", input: "0,01", want: "0.01"},
		{name: "empty is zero", input: "", want: "0"},
		{name: "whitespace is zero", input: "  ", want: "0"},
		{name: "malformed is zero", input: "abc", want: "0"},
		{name: "stray comma is zero", input: "1,2,3", want: "0"},
		{name: "dot-only input collapses", input: "12.34", want: "1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := decimal.RequireFromString(tt.want)
			assert.True(t, want.Equal(ParseCurrency(tt.input)),
				"ParseCurrency(%q) = %s, want %s", tt.input, ParseCurrency(tt.input), want)
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1234.56", "1.234,56"},
		{"0", "0,00"},
		{"12", "12,00"},
		{"123", "123,00"},
		{"1234567.8", "1.234.567,80"},
		{"-42.5", "-42,50"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(decimal.RequireFromString(tt.input)))
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"1.234,56", "0,01", "999,00", "12.345.678,90"} {
		assert.Equal(t, s, FormatCurrency(ParseCurrency(s)))
	}
}
