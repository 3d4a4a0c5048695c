package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/merchant"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

type fixedSuggester struct {
	reply map[string]string
	err   error
	calls int
}

func (f *fixedSuggester) SuggestBatch(_ context.Context, _ []categorize.Merchant, _ []model.Category) (map[string]string, error) {
	f.calls++
	return f.reply, f.err
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.SaveCategories([]model.Category{
		{Code: "100", Name: "Groceries", Type: model.CategoryTypeExpense, Spend: model.SpendVariable},
		{Code: "1000", Name: "Salary", Type: model.CategoryTypeIncome, Spend: model.SpendFixed},
	}))
	return st
}

func TestImportPersistsCategorizedBatch(t *testing.T) {
	st := newTestStore(t)
	sug := &fixedSuggester{reply: map[string]string{
		"coles 0645 oakleigh 03": "100",
		"acme pty ltd salary":    "1000",
	}}
	eng := categorize.NewEngine(merchant.NewCache(nil), sug, 0, logger.NewWithWriter(nil))

	csv := "02/01/2026,\"-52.63\",\"COLES 0645 OAKLEIGH 03\",\"\"\n" +
		"06/01/2026,\"+3500.00\",\"ACME PTY LTD SALARY\",\"\"\n"

	sum, err := Import(context.Background(), st, eng, &StatementParser{}, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Imported)
	assert.Equal(t, 2, sum.FromAI)
	assert.Equal(t, 1, sug.calls)
	assert.NotEmpty(t, sum.ImportID)
	require.NoError(t, sum.ProviderErr)

	txns := st.Transactions()
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.NotEmpty(t, txn.ID)
		assert.Equal(t, model.StatusSuggested, txn.Status)
	}
}

func TestImportParseErrorPersistsNothing(t *testing.T) {
	st := newTestStore(t)
	sug := &fixedSuggester{}
	eng := categorize.NewEngine(merchant.NewCache(nil), sug, 0, logger.NewWithWriter(nil))

	csv := "02/01/2026,\"-52.63\",\"COLES\",\"\"\n" +
		"not-a-date,\"-1.00\",\"BAD ROW\",\"\"\n"

	_, err := Import(context.Background(), st, eng, &StatementParser{}, strings.NewReader(csv))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Row)

	assert.Empty(t, st.Transactions())
	assert.Equal(t, 0, sug.calls, "parse failure must not reach the provider")
}

func TestImportProviderFailureStillImports(t *testing.T) {
	st := newTestStore(t)
	sug := &fixedSuggester{err: errors.New("upstream 503")}
	eng := categorize.NewEngine(merchant.NewCache(nil), sug, 0, logger.NewWithWriter(nil))

	csv := "02/01/2026,\"-52.63\",\"COLES 0645 OAKLEIGH 03\",\"\"\n"

	sum, err := Import(context.Background(), st, eng, &StatementParser{}, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)
	assert.Equal(t, 1, sum.Unsuggested)
	var perr *categorize.ProviderError
	require.ErrorAs(t, sum.ProviderErr, &perr)

	txns := st.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, model.StatusSuggested, txns[0].Status)
	assert.Empty(t, txns[0].CategoryCode)
	assert.Equal(t, model.SuggestedByNone, txns[0].SuggestedBy)
}

func TestImportAppendsToExistingTransactions(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveTransactions([]model.Transaction{{
		ID: "txn_existing", Description: "OLD", MerchantKey: "old",
		Status: model.StatusReconciled, CategoryCode: "100",
	}}))

	sug := &fixedSuggester{reply: map[string]string{"coles 0645 oakleigh 03": "100"}}
	eng := categorize.NewEngine(merchant.NewCache(nil), sug, 0, logger.NewWithWriter(nil))

	csv := "02/01/2026,\"-52.63\",\"COLES 0645 OAKLEIGH 03\",\"\"\n"
	sum, err := Import(context.Background(), st, eng, &StatementParser{}, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)
	assert.Len(t, st.Transactions(), 2)
}
