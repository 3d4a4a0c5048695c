package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/merchant"
	"github.com/tally-dev/tally/internal/reconcile"
	"github.com/tally-dev/tally/internal/store"
)

// configFile is the project configuration inside the data directory.
const configFile = "tally.yaml"

// env is everything a command needs once the data directory is open.
type env struct {
	dir   string
	cfg   *config.Config
	st    *store.Store
	cache *merchant.Cache
	ctl   *reconcile.Controller
	log   zerolog.Logger
}

// loadEnv opens a tally data directory: tally.yaml, the JSON store, and the
// merchant cache hydrated from disk.
func loadEnv(dir string) (*env, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(absDir, configFile))
	if err != nil {
		return nil, fmt.Errorf("not a tally directory (run 'tally init' first): %w", err)
	}
	cfg.DataDir = absDir

	st, err := store.Open(absDir)
	if err != nil {
		return nil, err
	}

	log := logger.New()
	cache := merchant.NewCache(st.MerchantEntries())
	return &env{
		dir:   absDir,
		cfg:   cfg,
		st:    st,
		cache: cache,
		ctl:   reconcile.NewController(st, cache, log),
		log:   log,
	}, nil
}

// engine builds the categorization engine, attaching the Gemini suggester
// when AI is enabled. A client setup failure degrades to no suggestions
// rather than blocking imports.
func (e *env) engine(ctx context.Context) *categorize.Engine {
	var suggester categorize.Suggester
	if e.cfg.AI.Enabled {
		g, err := categorize.NewGeminiSuggester(ctx, e.cfg.AI.Model)
		if err != nil {
			e.log.Warn().Err(err).Msg("ai suggester unavailable, importing without suggestions")
		} else {
			suggester = g
		}
	}
	return categorize.NewEngine(e.cache, suggester, e.cfg.AI.Timeout(), e.log)
}

// record snapshots the data directory (when auto-commit is on) and appends
// an audit entry. Best effort: the domain change already happened.
func (e *env) record(action, details, transactionID string) {
	var hash string
	if e.cfg.Git.AutoCommit && gitops.IsRepo(e.dir) {
		var err error
		hash, err = gitops.CommitData(e.dir, action+": "+details, e.cfg.Git.AuthorName, e.cfg.Git.AuthorEmail)
		if err != nil {
			e.log.Warn().Err(err).Str("action", action).Msg("auto-commit failed")
		}
	}
	err := auditlog.Append(e.dir, []auditlog.Entry{{
		Timestamp:     time.Now().UTC(),
		Actor:         auditlog.ActorCLI,
		Action:        action,
		Details:       details,
		TransactionID: transactionID,
		CommitHash:    hash,
	}})
	if err != nil {
		e.log.Warn().Err(err).Str("action", action).Msg("audit log append failed")
	}
}
