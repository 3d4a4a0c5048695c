// Package reconcile applies human confirmations and corrections to
// suggested transactions, moving them to their terminal reconciled state
// and teaching the merchant cache along the way.
package reconcile

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tally-dev/tally/internal/merchant"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// NotFoundError reports an unknown transaction ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.ID)
}

// InvalidStateError reports a reconciliation attempt on a transaction that
// is not in suggested state.
type InvalidStateError struct {
	ID     string
	Status model.TxnStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("transaction %s is %s, not suggested", e.ID, e.Status)
}

// Controller transitions transactions from suggested to reconciled. It owns
// the merchant cache: every successful reconciliation writes the human
// decision back, confirmation and correction alike.
type Controller struct {
	store *store.Store
	cache *merchant.Cache
	log   zerolog.Logger
}

// NewController creates a Controller over the given store and cache.
func NewController(st *store.Store, cache *merchant.Cache, log zerolog.Logger) *Controller {
	return &Controller{store: st, cache: cache, log: log}
}

// Cache returns the merchant cache the controller maintains.
func (c *Controller) Cache() *merchant.Cache {
	return c.cache
}

// ReconcileOne confirms or corrects a single suggested transaction with the
// chosen category code. The transaction and the cache entry are persisted
// as one unit; on failure neither changes.
func (c *Controller) ReconcileOne(transactionID, categoryCode string) (model.Transaction, error) {
	if categoryCode == "" {
		return model.Transaction{}, fmt.Errorf("category code is required")
	}

	cats := c.store.Categories()
	if !categoryExists(cats, categoryCode) {
		return model.Transaction{}, fmt.Errorf("unknown category code %q", categoryCode)
	}

	txns := c.store.Transactions()
	idx := -1
	for i := range txns {
		if txns[i].ID == transactionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Transaction{}, &NotFoundError{ID: transactionID}
	}
	if txns[idx].Status != model.StatusSuggested {
		return model.Transaction{}, &InvalidStateError{ID: transactionID, Status: txns[idx].Status}
	}

	corrected := txns[idx].CategoryCode != "" && txns[idx].CategoryCode != categoryCode
	txns[idx].CategoryCode = categoryCode
	txns[idx].Status = model.StatusReconciled

	prevEntries := c.cache.Entries()
	c.cache.Learn(txns[idx].MerchantKey, categoryCode, transactionID)

	if err := c.store.SaveReconciliation(txns, c.cache.Entries()); err != nil {
		// Leave the in-memory cache consistent with disk.
		c.cache.Replace(prevEntries)
		return model.Transaction{}, err
	}

	c.log.Info().
		Str("transaction", transactionID).
		Str("category", categoryCode).
		Bool("corrected", corrected).
		Msg("reconciled")

	return txns[idx], nil
}

// Result summarizes a ReconcileAll pass.
type Result struct {
	Reconciled int
	// Skipped counts suggested transactions with no category to confirm.
	// They stay suggested; the caller reports them, it is not a failure.
	Skipped int
}

// ReconcileAll confirms every suggested transaction at its current
// suggestion. Transactions without a category are skipped and counted. All
// updates persist as one unit.
func (c *Controller) ReconcileAll() (Result, error) {
	txns := c.store.Transactions()

	var res Result
	prevEntries := c.cache.Entries()
	for i := range txns {
		if txns[i].Status != model.StatusSuggested {
			continue
		}
		if txns[i].CategoryCode == "" {
			res.Skipped++
			continue
		}
		txns[i].Status = model.StatusReconciled
		c.cache.Learn(txns[i].MerchantKey, txns[i].CategoryCode, txns[i].ID)
		res.Reconciled++
	}

	if res.Reconciled == 0 {
		return res, nil
	}

	if err := c.store.SaveReconciliation(txns, c.cache.Entries()); err != nil {
		c.cache.Replace(prevEntries)
		return Result{}, err
	}

	c.log.Info().
		Int("reconciled", res.Reconciled).
		Int("skipped", res.Skipped).
		Msg("reconciled all suggested transactions")

	return res, nil
}

func categoryExists(cats []model.Category, code string) bool {
	for _, c := range cats {
		if c.Code == code {
			return true
		}
	}
	return false
}
