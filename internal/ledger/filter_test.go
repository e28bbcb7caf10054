package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extratolab/extrato/internal/domain"
)

func filterRows() []domain.Transaction {
	return []domain.Transaction{
		{ID: "a", Date: "2024-01-05", Description: "PIX recebido Cliente X", Credit: "1.000,00", Category: "Receitas"},
		{ID: "b", Date: "2024-01-10", Description: "Pagamento fornecedor", Debit: "50,00", Category: "Fornecedores"},
		{ID: "c", Date: "2024-02-01", Description: "Tarifa manutenção conta", Debit: "29,90", Category: "Tarifas Bancárias", IsUnusual: true, UnusualReason: "valor atípico"},
		{ID: "d", Date: "2024-02-15", Description: "TED recebida", Credit: "200,00", Category: "Receitas"},
	}
}

func ids(rows []domain.Transaction) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestApplyFilter(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{name: "cleared criteria match all", criteria: Criteria{}, want: []string{"a", "b", "c", "d"}},
		{name: "text is case-insensitive substring", criteria: Criteria{Text: "pix"}, want: []string{"a"}},
		{name: "text no match", criteria: Criteria{Text: "boleto"}, want: []string{}},
		{name: "category exact", criteria: Criteria{Category: "Receitas"}, want: []string{"a", "d"}},
		{name: "unusual only", criteria: Criteria{Unusual: UnusualOnly}, want: []string{"c"}},
		{name: "common only", criteria: Criteria{Unusual: CommonOnly}, want: []string{"a", "b", "d"}},
		{name: "date lower bound inclusive", criteria: Criteria{StartDate: "2024-01-10"}, want: []string{"b", "c", "d"}},
		{name: "date upper bound inclusive", criteria: Criteria{EndDate: "2024-02-01"}, want: []string{"a", "b", "c"}},
		{name: "date range", criteria: Criteria{StartDate: "2024-01-06", EndDate: "2024-02-01"}, want: []string{"b", "c"}},
		{name: "min amount inclusive", criteria: Criteria{MinAmount: "200,00"}, want: []string{"a", "d"}},
		{name: "max amount inclusive", criteria: Criteria{MaxAmount: "50,00"}, want: []string{"b", "c"}},
		{name: "amount band", criteria: Criteria{MinAmount: "30,00", MaxAmount: "500,00"}, want: []string{"b", "d"}},
		{name: "debit only", criteria: Criteria{Type: TypeDebit}, want: []string{"b", "c"}},
		{name: "credit only", criteria: Criteria{Type: TypeCredit}, want: []string{"a", "d"}},
		{name: "criteria are ANDed", criteria: Criteria{Type: TypeDebit, Unusual: UnusualOnly}, want: []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilter(filterRows(), tt.criteria)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApplyFilter_DebitOnlyMatchesPositiveDebit(t *testing.T) {
	rows := []domain.Transaction{
		{ID: "x", Debit: "", Credit: "10,00"},
		{ID: "y", Debit: "50,00"},
		{ID: "z", Debit: "0,00"},
	}
	got := ApplyFilter(rows, Criteria{Type: TypeDebit})
	assert.Equal(t, []string{"y"}, ids(got))
}

func TestApplyFilter_Idempotent(t *testing.T) {
	rows := filterRows()
	c := Criteria{Category: "Receitas", MinAmount: "100,00"}

	first := ApplyFilter(rows, c)
	second := ApplyFilter(rows, c)
	assert.Equal(t, first, second)
}

func TestApplyFilter_DoesNotMutateInput(t *testing.T) {
	rows := filterRows()
	before := make([]domain.Transaction, len(rows))
	copy(before, rows)

	_ = ApplyFilter(rows, Criteria{Text: "pix", Type: TypeDebit})
	require.Equal(t, before, rows)
}
