package categorize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/merchant"
	"github.com/tally-dev/tally/internal/model"
)

// fakeSuggester records every batch it receives and replies from a canned map.
type fakeSuggester struct {
	calls     int
	lastBatch []Merchant
	reply     map[string]string
	err       error
}

func (f *fakeSuggester) SuggestBatch(_ context.Context, merchants []Merchant, _ []model.Category) (map[string]string, error) {
	f.calls++
	f.lastBatch = merchants
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func testCategories() []model.Category {
	return []model.Category{
		{Code: "100", Name: "Groceries", Type: model.CategoryTypeExpense},
		{Code: "300", Name: "Transport", Type: model.CategoryTypeExpense},
		{Code: "1000", Name: "Salary", Type: model.CategoryTypeIncome},
	}
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func draft(desc, amount string) model.Transaction {
	return model.Transaction{
		Date:        time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Amount:      dec(amount),
		Description: desc,
		MerchantKey: merchant.Key(desc),
		SuggestedBy: model.SuggestedByNone,
		Status:      model.StatusPending,
	}
}

func newEngine(cache *merchant.Cache, s Suggester) *Engine {
	return NewEngine(cache, s, time.Second, logger.NewWithWriter(nil))
}

func TestCacheHitSkipsAI(t *testing.T) {
	cache := merchant.NewCache(nil)
	cache.Learn("coles 0645 oakleigh 03", "100", "txn_earlier")
	fake := &fakeSuggester{}
	e := newEngine(cache, fake)

	got, res := e.CategorizeBatch(context.Background(), []model.Transaction{
		draft("COLES 0645 OAKLEIGH 03", "-52.63"),
	}, testCategories())

	require.Len(t, got, 1)
	assert.Equal(t, "100", got[0].CategoryCode)
	assert.Equal(t, model.SuggestedByCache, got[0].SuggestedBy)
	assert.Equal(t, model.StatusSuggested, got[0].Status)
	assert.Equal(t, 1, res.FromCache)
	assert.Zero(t, fake.calls, "fully cached batch must not call the AI")
}

func TestSingleBatchedCall(t *testing.T) {
	fake := &fakeSuggester{reply: map[string]string{
		"coles 0645 oakleigh 03":   "100",
		"uber *trip help.uber.com": "300",
	}}
	e := newEngine(merchant.NewCache(nil), fake)

	txns := []model.Transaction{
		draft("COLES 0645 OAKLEIGH 03", "-52.63"),
		draft("UBER *TRIP HELP.UBER.COM", "-18.40"),
		draft("COLES 0645 OAKLEIGH 03", "-48.10"), // same merchant, second txn
	}
	got, res := e.CategorizeBatch(context.Background(), txns, testCategories())

	assert.Equal(t, 1, fake.calls, "exactly one AI call per import")
	assert.Len(t, fake.lastBatch, 2, "merchants deduplicated by key")

	// Same merchant key gets the same suggestion on every transaction.
	assert.Equal(t, "100", got[0].CategoryCode)
	assert.Equal(t, "100", got[2].CategoryCode)
	assert.Equal(t, "300", got[1].CategoryCode)
	for _, txn := range got {
		assert.Equal(t, model.SuggestedByAI, txn.SuggestedBy)
		assert.Equal(t, model.StatusSuggested, txn.Status)
	}
	assert.Equal(t, 3, res.FromAI)
	assert.NoError(t, res.ProviderErr)
}

func TestMixedCacheAndAI(t *testing.T) {
	cache := merchant.NewCache(nil)
	cache.Learn("optus prepaid mobile", "900", "txn_old")
	fake := &fakeSuggester{reply: map[string]string{"coles 0645 oakleigh 03": "100"}}
	e := newEngine(cache, fake)

	cats := append(testCategories(), model.Category{Code: "900", Name: "Phone & Utilities", Type: model.CategoryTypeExpense})
	got, res := e.CategorizeBatch(context.Background(), []model.Transaction{
		draft("OPTUS PREPAID MOBILE", "-29.90"),
		draft("COLES 0645 OAKLEIGH 03", "-52.63"),
	}, cats)

	assert.Equal(t, model.SuggestedByCache, got[0].SuggestedBy)
	assert.Equal(t, model.SuggestedByAI, got[1].SuggestedBy)
	assert.Equal(t, 1, res.FromCache)
	assert.Equal(t, 1, res.FromAI)
	require.Len(t, fake.lastBatch, 1, "cached merchant must not be sent to the AI")
	assert.Equal(t, "coles 0645 oakleigh 03", fake.lastBatch[0].Key)
}

func TestProviderFailure(t *testing.T) {
	fake := &fakeSuggester{err: errors.New("timeout")}
	e := newEngine(merchant.NewCache(nil), fake)

	got, res := e.CategorizeBatch(context.Background(), []model.Transaction{
		draft("COLES 0645 OAKLEIGH 03", "-52.63"),
		draft("UBER *TRIP", "-18.40"),
	}, testCategories())

	// The import survives: every uncached transaction is suggested but
	// uncategorized.
	for _, txn := range got {
		assert.Empty(t, txn.CategoryCode)
		assert.Equal(t, model.SuggestedByNone, txn.SuggestedBy)
		assert.Equal(t, model.StatusSuggested, txn.Status)
	}
	assert.Equal(t, 2, res.Unsuggested)

	var perr *ProviderError
	require.ErrorAs(t, res.ProviderErr, &perr)
}

func TestMissingKeyFallsBack(t *testing.T) {
	fake := &fakeSuggester{reply: map[string]string{"coles 0645 oakleigh 03": "100"}}
	e := newEngine(merchant.NewCache(nil), fake)

	got, res := e.CategorizeBatch(context.Background(), []model.Transaction{
		draft("COLES 0645 OAKLEIGH 03", "-52.63"),
		draft("MYSTERY MERCHANT", "-10.00"),
	}, testCategories())

	assert.Equal(t, "100", got[0].CategoryCode)
	assert.Empty(t, got[1].CategoryCode)
	assert.Equal(t, model.SuggestedByNone, got[1].SuggestedBy)
	assert.Equal(t, model.StatusSuggested, got[1].Status, "omitted key falls back, batch not failed")
	assert.Equal(t, 1, res.FromAI)
	assert.Equal(t, 1, res.Unsuggested)
	assert.NoError(t, res.ProviderErr)
}

func TestInvalidCodeTreatedAsNoSuggestion(t *testing.T) {
	fake := &fakeSuggester{reply: map[string]string{"coles 0645 oakleigh 03": "9999"}}
	e := newEngine(merchant.NewCache(nil), fake)

	got, res := e.CategorizeBatch(context.Background(), []model.Transaction{
		draft("COLES 0645 OAKLEIGH 03", "-52.63"),
	}, testCategories())

	assert.Empty(t, got[0].CategoryCode)
	assert.Equal(t, model.SuggestedByNone, got[0].SuggestedBy)
	assert.Equal(t, 1, res.Unsuggested)
}

func TestNilSuggester(t *testing.T) {
	e := newEngine(merchant.NewCache(nil), nil)

	got, res := e.CategorizeBatch(context.Background(), []model.Transaction{
		draft("COLES 0645 OAKLEIGH 03", "-52.63"),
	}, testCategories())

	assert.Equal(t, model.StatusSuggested, got[0].Status)
	assert.Equal(t, model.SuggestedByNone, got[0].SuggestedBy)
	require.Error(t, res.ProviderErr)

	var perr *ProviderError
	assert.ErrorAs(t, res.ProviderErr, &perr)
}

func TestInputNotMutated(t *testing.T) {
	fake := &fakeSuggester{reply: map[string]string{"coles 0645 oakleigh 03": "100"}}
	e := newEngine(merchant.NewCache(nil), fake)

	in := []model.Transaction{draft("COLES 0645 OAKLEIGH 03", "-52.63")}
	_, _ = e.CategorizeBatch(context.Background(), in, testCategories())

	assert.Equal(t, model.StatusPending, in[0].Status)
	assert.Empty(t, in[0].CategoryCode)
}
