package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/store"
)

// Summary reports the outcome of one import batch.
type Summary struct {
	ImportID    string
	Imported    int
	FromCache   int
	FromAI      int
	Unsuggested int
	ProviderErr error // non-nil when AI suggestions were unavailable
}

// Import runs the full pipeline for a single statement: parse, assign IDs,
// categorize as one batch, and append the batch to the store. A parse error
// aborts the whole file with nothing persisted. A categorization provider
// failure does not abort; it is reported in the summary.
func Import(ctx context.Context, st *store.Store, eng *categorize.Engine, p Parser, r io.Reader) (Summary, error) {
	drafts, err := p.Parse(r)
	if err != nil {
		return Summary{}, err
	}
	if len(drafts) == 0 {
		return Summary{ImportID: id.NewImport()}, nil
	}

	for i := range drafts {
		drafts[i].ID = id.NewTransaction()
	}

	categorized, res := eng.CategorizeBatch(ctx, drafts, st.Categories())

	txns := append(st.Transactions(), categorized...)
	if err := st.SaveTransactions(txns); err != nil {
		return Summary{}, fmt.Errorf("saving imported transactions: %w", err)
	}

	return Summary{
		ImportID:    id.NewImport(),
		Imported:    len(categorized),
		FromCache:   res.FromCache,
		FromAI:      res.FromAI,
		Unsuggested: res.Unsuggested,
		ProviderErr: res.ProviderErr,
	}, nil
}
