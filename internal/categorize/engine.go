// Package categorize assigns category suggestions to imported transactions.
// Cached merchants are resolved locally; everything else goes to the AI
// provider in one batched call per import.
package categorize

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/merchant"
	"github.com/tally-dev/tally/internal/model"
)

// ProviderError wraps a failure of the AI suggestion provider: network
// error, timeout, or a malformed response. It is recovered locally — the
// import proceeds with unsuggested transactions.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "ai provider: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Merchant is one distinct uncached merchant included in the batch request.
type Merchant struct {
	Key         string
	Description string
	Amount      decimal.Decimal // representative amount, sign hints expense vs income
	Date        time.Time
}

// Suggester issues a single batched suggestion request covering every
// merchant, constrained to the given category list, and returns a mapping
// from merchant key to category code. Keys may be missing from the result.
type Suggester interface {
	SuggestBatch(ctx context.Context, merchants []Merchant, cats []model.Category) (map[string]string, error)
}

// Result summarizes one categorization batch.
type Result struct {
	FromCache   int
	FromAI      int
	Unsuggested int
	ProviderErr error // non-nil when the AI call failed; the import still succeeds
}

// Engine resolves categories for a batch of transactions.
type Engine struct {
	cache     *merchant.Cache
	suggester Suggester
	timeout   time.Duration
	log       zerolog.Logger
}

// NewEngine creates an Engine. A nil suggester disables AI enrichment:
// uncached transactions stay unsuggested.
func NewEngine(cache *merchant.Cache, suggester Suggester, timeout time.Duration, log zerolog.Logger) *Engine {
	return &Engine{cache: cache, suggester: suggester, timeout: timeout, log: log}
}

// CategorizeBatch populates CategoryCode and SuggestedBy on every draft and
// moves it to suggested status. Cache hits never reach the AI; the remainder
// is deduplicated by merchant key and sent in exactly one batched call. If
// that call fails, affected transactions come back uncategorized rather
// than failing the import.
func (e *Engine) CategorizeBatch(ctx context.Context, txns []model.Transaction, cats []model.Category) ([]model.Transaction, Result) {
	out := make([]model.Transaction, len(txns))
	copy(out, txns)

	var res Result
	var uncached []int
	for i := range out {
		if code, ok := e.cache.Lookup(out[i].MerchantKey); ok {
			out[i].CategoryCode = code
			out[i].SuggestedBy = model.SuggestedByCache
			out[i].Status = model.StatusSuggested
			res.FromCache++
			continue
		}
		uncached = append(uncached, i)
	}

	if len(uncached) == 0 {
		return out, res
	}

	suggestions, err := e.suggest(ctx, out, uncached, cats)
	if err != nil {
		res.ProviderErr = err
		e.log.Warn().Err(err).Int("transactions", len(uncached)).
			Msg("ai categorization failed, importing without suggestions")
	}

	valid := make(map[string]bool, len(cats))
	for _, c := range cats {
		valid[c.Code] = true
	}

	for _, i := range uncached {
		out[i].Status = model.StatusSuggested
		code, ok := suggestions[out[i].MerchantKey]
		if !ok || !valid[code] {
			// Missing key or a code outside the category list: fall back
			// to no suggestion instead of failing the batch.
			out[i].CategoryCode = ""
			out[i].SuggestedBy = model.SuggestedByNone
			res.Unsuggested++
			continue
		}
		out[i].CategoryCode = code
		out[i].SuggestedBy = model.SuggestedByAI
		res.FromAI++
	}

	return out, res
}

// suggest issues the single batched AI call for the uncached transactions,
// deduplicated by merchant key.
func (e *Engine) suggest(ctx context.Context, txns []model.Transaction, uncached []int, cats []model.Category) (map[string]string, error) {
	if e.suggester == nil {
		return nil, &ProviderError{Err: errors.New("ai categorization disabled")}
	}

	seen := make(map[string]bool, len(uncached))
	var merchants []Merchant
	for _, i := range uncached {
		t := txns[i]
		if seen[t.MerchantKey] {
			continue
		}
		seen[t.MerchantKey] = true
		merchants = append(merchants, Merchant{
			Key:         t.MerchantKey,
			Description: t.Description,
			Amount:      t.Amount,
			Date:        t.Date,
		})
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	suggestions, err := e.suggester.SuggestBatch(callCtx, merchants, cats)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}
	return suggestions, nil
}
