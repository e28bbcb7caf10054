package domain

import (
	"github.com/shopspring/decimal"
)

// Transaction represents one reviewed ledger entry extracted from a bank
// statement. Debit and Credit are kept as the Brazilian-locale strings the
// user sees and edits ("1.234,56"); Balance is derived by the ledger engine
// and is never edited directly.
type Transaction struct {
	ID          string `json:"id"`
	Date        string `json:"date"` // canonical YYYY-MM-DD
	Description string `json:"description"`
	Debit       string `json:"debit"`  // empty = unset
	Credit      string `json:"credit"` // empty = unset

	Balance decimal.Decimal `json:"balance"`

	CompanyName string `json:"companyName"`
	CNPJ        string `json:"cnpj"` // digits-only; display formatting happens at the boundary

	Category      string `json:"category"`
	IsUnusual     bool   `json:"isUnusual"`
	UnusualReason string `json:"unusualReason"`
}
