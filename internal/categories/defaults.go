package categories

import "github.com/tally-dev/tally/internal/model"

// DefaultChart returns the default category list seeded by `tally init`.
func DefaultChart() []model.Category {
	return []model.Category{
		{Code: "100", Name: "Groceries", Type: model.CategoryTypeExpense, Spend: model.SpendVariable},
		{Code: "200", Name: "Restaurants & Takeaway", Type: model.CategoryTypeExpense, Spend: model.SpendVariable},
		{Code: "300", Name: "Transport", Type: model.CategoryTypeExpense, Spend: model.SpendVariable},
		{Code: "500", Name: "Other", Type: model.CategoryTypeExpense, Spend: model.SpendVariable},
		{Code: "600", Name: "Software & Tech", Type: model.CategoryTypeExpense, Spend: model.SpendFixed},
		{Code: "700", Name: "Pharmacy & Medical", Type: model.CategoryTypeExpense, Spend: model.SpendVariable},
		{Code: "800", Name: "Entertainment", Type: model.CategoryTypeExpense, Spend: model.SpendVariable},
		{Code: "900", Name: "Phone & Utilities", Type: model.CategoryTypeExpense, Spend: model.SpendFixed},
		{Code: "1000", Name: "Salary", Type: model.CategoryTypeIncome, Spend: model.SpendFixed},
	}
}
