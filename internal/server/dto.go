package server

import (
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/report"
)

const dateFormat = "2006-01-02"

// transactionJSON is the API shape of a transaction. Amounts are strings so
// clients never see float rounding.
type transactionJSON struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	MerchantKey  string `json:"merchant_key"`
	CategoryCode string `json:"category_code,omitempty"`
	SuggestedBy  string `json:"suggested_by"`
	Status       string `json:"status"`
}

type categoryJSON struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	CategoryType string `json:"category_type"`
	Spend        string `json:"type"` // fixed or variable
}

type analysisJSON struct {
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	Spend        string            `json:"type"`
	Total        string            `json:"total"`
	Transactions []transactionJSON `json:"transactions"`
}

func marshalTransaction(t model.Transaction) transactionJSON {
	return transactionJSON{
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

func marshalCategory(c model.Category) categoryJSON {
	return categoryJSON{
		Code:         c.Code,
		Name:         c.Name,
		CategoryType: string(c.Type),
		Spend:        string(c.Spend),
	}
}

func unmarshalCategory(row categoryJSON) model.Category {
	return model.Category{
		Code:  row.Code,
		Name:  row.Name,
		Type:  model.CategoryType(row.CategoryType),
		Spend: model.SpendKind(row.Spend),
	}
}

func marshalAnalysis(ct report.CategoryTotal) analysisJSON {
	txns := make([]transactionJSON, 0, len(ct.Transactions))
	for _, t := range ct.Transactions {
		txns = append(txns, marshalTransaction(t))
	}
	return analysisJSON{
		Code:         ct.Code,
		Name:         ct.Name,
		Spend:        string(ct.Spend),
		Total:        ct.Total.String(),
		Transactions: txns,
	}
}
