package model

// CategoryType classifies categories by the kind of money they track.
type CategoryType string

const (
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeAsset   CategoryType = "asset"
)

// SpendKind flags a category as a fixed or variable cost.
type SpendKind string

const (
	SpendFixed    SpendKind = "fixed"
	SpendVariable SpendKind = "variable"
)

// Category represents an expense/income category transactions reconcile into.
type Category struct {
	Code  string // unique short identifier, e.g. "100"
	Name  string
	Type  CategoryType
	Spend SpendKind
}
