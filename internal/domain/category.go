package domain

// CategoryUncategorized is the designated member for transactions the model
// (or the user) could not classify.
const CategoryUncategorized = "Sem Categoria"

// Categories is the fixed accounting taxonomy. The extraction prompt, the
// category-suggestion oracle and the edit API are all constrained to it.
var Categories = []string{
	"Receitas",
	"Fornecedores",
	"Folha de Pagamento",
	"Impostos e Taxas",
	"Tarifas Bancárias",
	"Aluguel e Condomínio",
	"Serviços",
	"Empréstimos e Financiamentos",
	"Transferências",
	"Investimentos",
	"Outros",
	CategoryUncategorized,
}

var categorySet = func() map[string]bool {
	m := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

// ValidCategory reports whether name is a member of the fixed taxonomy.
func ValidCategory(name string) bool {
	return categorySet[name]
}
