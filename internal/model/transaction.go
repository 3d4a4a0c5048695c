package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnStatus represents the lifecycle state of an imported transaction.
type TxnStatus string

const (
	StatusPending    TxnStatus = "pending"
	StatusSuggested  TxnStatus = "suggested"
	StatusReconciled TxnStatus = "reconciled"
)

// Provenance records where a transaction's current category suggestion came from.
type Provenance string

const (
	SuggestedByCache Provenance = "cache"
	SuggestedByAI    Provenance = "ai"
	SuggestedByNone  Provenance = "none"
)

// Transaction represents one imported bank statement row.
type Transaction struct {
	ID           string
	Date         time.Time
	Amount       decimal.Decimal // negative = expense, positive = income
	Description  string          // raw statement description
	MerchantKey  string          // normalized description, cache lookup key
	CategoryCode string          // empty until categorized
	SuggestedBy  Provenance
	Status       TxnStatus
}

// Categorized reports whether the transaction has a category assigned.
func (t Transaction) Categorized() bool {
	return t.CategoryCode != ""
}
