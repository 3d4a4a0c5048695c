// Package report aggregates reconciled transactions for spending analysis.
// Only reconciled data counts: suggestions are opinions, not facts.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Filter selects which reconciled transactions to aggregate.
type Filter string

const (
	FilterExpenses Filter = "expenses"
	FilterIncome   Filter = "income"
	FilterAll      Filter = "all"
)

// CategoryTotal is one row of the analysis: a category and the absolute sum
// of its reconciled transactions.
type CategoryTotal struct {
	Code         string
	Name         string
	Spend        model.SpendKind
	Total        decimal.Decimal
	Transactions []model.Transaction
}

// ByCategory groups reconciled transactions by category code and returns
// totals sorted by descending amount. Reconciled transactions whose code is
// no longer in the category list are reported under their code with an
// Unknown name rather than dropped.
func ByCategory(txns []model.Transaction, cats []model.Category, f Filter) []CategoryTotal {
	byCode := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		byCode[c.Code] = c
	}

	totals := make(map[string]*CategoryTotal)
	var order []string
	for _, t := range txns {
		if t.Status != model.StatusReconciled {
			continue
		}
		if !matches(t, f) {
			continue
		}

		ct, ok := totals[t.CategoryCode]
		if !ok {
			ct = &CategoryTotal{Code: t.CategoryCode, Name: "Unknown", Total: decimal.Zero}
			if cat, found := byCode[t.CategoryCode]; found {
				ct.Name = cat.Name
				ct.Spend = cat.Spend
			}
			totals[t.CategoryCode] = ct
			order = append(order, t.CategoryCode)
		}
		ct.Total = ct.Total.Add(t.Amount.Abs())
		ct.Transactions = append(ct.Transactions, t)
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, code := range order {
		out = append(out, *totals[code])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

func matches(t model.Transaction, f Filter) bool {
	switch f {
	case FilterExpenses:
		return t.Amount.IsNegative()
	case FilterIncome:
		return t.Amount.IsPositive()
	default:
		return true
	}
}
