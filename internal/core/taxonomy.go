package core

var taxonomy = map[TransactionType][]string{
	Expense: {"Alimentação", "Transporte", "Moradia", "Contas", "Lazer", "Saúde", "Educação", "Roupas", "Outros Despesa"},
	Income:  {"Salário", "Freelance", "Investimentos", "Presente", "Vendas", "Outros Receita"},
}

// Categories returns a copy of the allowed categories for t, in display order.
func Categories(t TransactionType) []string {
	return append([]string(nil), taxonomy[t]...)
}

// Taxonomy returns the full category taxonomy keyed by display label, the
// shape the add-transaction form renders.
func Taxonomy() map[string][]string {
	return map[string][]string{
		Expense.Label(): Categories(Expense),
		Income.Label():  Categories(Income),
	}
}

// IsValidCategory reports whether category belongs to the taxonomy of t.
func IsValidCategory(t TransactionType, category string) bool {
	for _, c := range taxonomy[t] {
		if c == category {
			return true
		}
	}
	return false
}
