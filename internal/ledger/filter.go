package ledger

import (
	"strings"

	"github.com/extratolab/extrato/internal/domain"
	"github.com/extratolab/extrato/internal/validate"
)

// TransactionType is the three-way type selector of the filter.
type TransactionType string

const (
	TypeAny    TransactionType = ""
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// UnusualStatus is the three-way anomaly selector of the filter.
type UnusualStatus string

const (
	UnusualAny  UnusualStatus = ""
	UnusualOnly UnusualStatus = "unusual"
	CommonOnly  UnusualStatus = "common"
)

// Criteria is one filter configuration. The zero value is the cleared state:
// every field at its unbounded/any default, matching all rows. Amount bounds
// are Brazilian-locale strings like the amounts themselves; date bounds are
// canonical YYYY-MM-DD and compare lexicographically.
type Criteria struct {
	Text      string          `json:"text"`
	Category  string          `json:"category"`
	Unusual   UnusualStatus   `json:"unusual"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	MinAmount string          `json:"minAmount"`
	MaxAmount string          `json:"maxAmount"`
	Type      TransactionType `json:"type"`
}

// ApplyFilter returns the subset of rows passing every active criterion. It is
// pure: input rows are never mutated, and identical inputs yield identical
// outputs.
func ApplyFilter(rows []domain.Transaction, c Criteria) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(rows))
	text := strings.ToLower(c.Text)

	for _, row := range rows {
		if text != "" && !strings.Contains(strings.ToLower(row.Description), text) {
			continue
		}
		if c.Category != "" && row.Category != c.Category {
			continue
		}
		switch c.Unusual {
		case UnusualOnly:
			if !row.IsUnusual {
				continue
			}
		case CommonOnly:
			if row.IsUnusual {
				continue
			}
		}
		if c.StartDate != "" && row.Date < c.StartDate {
			continue
		}
		if c.EndDate != "" && row.Date > c.EndDate {
			continue
		}

		debit := validate.ParseCurrency(row.Debit)
		credit := validate.ParseCurrency(row.Credit)

		if c.MinAmount != "" || c.MaxAmount != "" {
			amount := credit.Sub(debit).Abs()
			if c.MinAmount != "" && amount.LessThan(validate.ParseCurrency(c.MinAmount)) {
				continue
			}
			if c.MaxAmount != "" && amount.GreaterThan(validate.ParseCurrency(c.MaxAmount)) {
				continue
			}
		}

		switch c.Type {
		case TypeDebit:
			if !debit.IsPositive() {
				continue
			}
		case TypeCredit:
			if !credit.IsPositive() {
				continue
			}
		}

		out = append(out, row)
	}
	return out
}
