// Package export encodes a filtered view of the ledger into the download
// formats offered by the UI. All encoders share one flat schema.
package export

import (
	"github.com/extratolab/extrato/internal/domain"
	"github.com/extratolab/extrato/internal/validate"
)

// Header is the shared column set, in order.
var Header = []string{
	"Data",
	"Descrição",
	"Empresa",
	"CNPJ",
	"Categoria",
	"Débito",
	"Crédito",
	"Saldo",
	"Incomum",
	"Motivo",
}

// Row is one export line. Everything is a display string: amounts keep their
// Brazilian form, the identifier gets its punctuated mask, the balance is
// rendered from the derived decimal.
type Row struct {
	Date          string
	Description   string
	CompanyName   string
	CNPJ          string
	Category      string
	Debit         string
	Credit        string
	Balance       string
	Unusual       string
	UnusualReason string
}

// Rows maps transactions into the export schema.
func Rows(txs []domain.Transaction) []Row {
	out := make([]Row, len(txs))
	for i, t := range txs {
		unusual := "Não"
		if t.IsUnusual {
			unusual = "Sim"
		}
		out[i] = Row{
			Date:          t.Date,
			Description:   t.Description,
			CompanyName:   t.CompanyName,
			CNPJ:          validate.FormatCNPJ(t.CNPJ),
			Category:      t.Category,
			Debit:         t.Debit,
			Credit:        t.Credit,
			Balance:       validate.FormatCurrency(t.Balance),
			Unusual:       unusual,
			UnusualReason: t.UnusualReason,
		}
	}
	return out
}

func (r Row) fields() []string {
	return []string{
		r.Date,
		r.Description,
		r.CompanyName,
		r.CNPJ,
		r.Category,
		r.Debit,
		r.Credit,
		r.Balance,
		r.Unusual,
		r.UnusualReason,
	}
}
