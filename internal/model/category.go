package model

// CategoryKind indicates whether a category is meant for income or expense transactions.
type CategoryKind string

const (
	// CategoryKindIncome marks categories for income transactions.
	CategoryKindIncome CategoryKind = "income"
	// CategoryKindExpense marks categories for expense transactions.
	CategoryKindExpense CategoryKind = "expense"
)

// Category is reference data used to resolve a transaction's free-text category
// to a persisted identifier.
type Category struct {
	ID   ID
	Name string
	Kind CategoryKind
}
