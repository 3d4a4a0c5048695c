package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/merchant"
	"github.com/tally-dev/tally/internal/model"
)

const dateFormat = "2006-01-02"

// categoryRow is the JSON shape of one category in categories.json.
type categoryRow struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	CategoryType string `json:"category_type"`
	Spend        string `json:"type"` // fixed or variable
}

// transactionRow is the JSON shape of one transaction in transactions.json.
// Amounts are stored as strings so decimals survive the round-trip exactly.
type transactionRow struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	MerchantKey  string `json:"merchant_key"`
	CategoryCode string `json:"category_code,omitempty"`
	SuggestedBy  string `json:"suggested_by"`
	Status       string `json:"status"`
}

// merchantRow is the JSON shape of one merchant-cache.json value.
type merchantRow struct {
	CategoryCode string `json:"category_code"`
	LearnedFrom  string `json:"learned_from,omitempty"`
	LearnedAt    string `json:"learned_at,omitempty"`
}

func marshalCategory(c model.Category) categoryRow {
	return categoryRow{
		Code:         c.Code,
		Name:         c.Name,
		CategoryType: string(c.Type),
		Spend:        string(c.Spend),
	}
}

func unmarshalCategory(row categoryRow) model.Category {
	return model.Category{
		Code:  row.Code,
		Name:  row.Name,
		Type:  model.CategoryType(row.CategoryType),
		Spend: model.SpendKind(row.Spend),
	}
}

func marshalTransaction(t model.Transaction) transactionRow {
	return transactionRow{
		ID:           t.ID,
		Date:         t.Date.Format(dateFormat),
		Amount:       t.Amount.String(),
		Description:  t.Description,
		MerchantKey:  t.MerchantKey,
		CategoryCode: t.CategoryCode,
		SuggestedBy:  string(t.SuggestedBy),
		Status:       string(t.Status),
	}
}

func unmarshalTransaction(row transactionRow) (model.Transaction, error) {
	date, err := time.Parse(dateFormat, row.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", row.Date, err)
	}

	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", row.Amount, err)
	}

	return model.Transaction{
		ID:           row.ID,
		Date:         date,
		Amount:       amount,
		Description:  row.Description,
		MerchantKey:  row.MerchantKey,
		CategoryCode: row.CategoryCode,
		SuggestedBy:  model.Provenance(row.SuggestedBy),
		Status:       model.TxnStatus(row.Status),
	}, nil
}

func marshalMerchant(e merchant.Entry) merchantRow {
	row := merchantRow{
		CategoryCode: e.CategoryCode,
		LearnedFrom:  e.LearnedFrom,
	}
	if !e.LearnedAt.IsZero() {
		row.LearnedAt = e.LearnedAt.Format(time.RFC3339)
	}
	return row
}

func unmarshalMerchant(row merchantRow) (merchant.Entry, error) {
	e := merchant.Entry{
		CategoryCode: row.CategoryCode,
		LearnedFrom:  row.LearnedFrom,
	}
	if row.LearnedAt != "" {
		ts, err := time.Parse(time.RFC3339, row.LearnedAt)
		if err != nil {
			return merchant.Entry{}, fmt.Errorf("parsing learned_at %q: %w", row.LearnedAt, err)
		}
		e.LearnedAt = ts
	}
	return e, nil
}
