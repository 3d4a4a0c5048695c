// Package server exposes the import and reconciliation workflow over HTTP
// for the web UI. All mutating handlers serialize on a single lock; the
// store is not safe for concurrent writers.
package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/reconcile"
	"github.com/tally-dev/tally/internal/store"
)

// Server wires the store, categorization engine, and reconcile controller
// behind a gin router.
type Server struct {
	cfg *config.Config
	st  *store.Store
	eng *categorize.Engine
	ctl *reconcile.Controller
	reg *importer.Registry
	log zerolog.Logger

	mu sync.Mutex
}

// New creates a Server. The registry decides which statement formats
// uploads may use.
func New(cfg *config.Config, st *store.Store, eng *categorize.Engine, ctl *reconcile.Controller, reg *importer.Registry, log zerolog.Logger) *Server {
	return &Server{cfg: cfg, st: st, eng: eng, ctl: ctl, reg: reg, log: log}
}

// Router builds the gin engine with all API routes registered.
func (s *Server) Router() *gin.Engine {
	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/upload-csv", s.handleUploadCSV)
	api.GET("/transactions", s.handleListTransactions)
	api.POST("/reconcile", s.handleReconcile)
	api.POST("/reconcile-all", s.handleReconcileAll)
	api.GET("/categories", s.handleListCategories)
	api.POST("/categories", s.handleAddCategory)
	api.PUT("/categories/:code", s.handleUpdateCategory)
	api.DELETE("/categories/:code", s.handleRemoveCategory)
	api.GET("/analysis", s.handleAnalysis)
	api.POST("/clear-transactions", s.handleClearTransactions)
	api.POST("/clear-data", s.handleClearData)
	return r
}

// Run serves the API on the configured listen address until the listener
// fails.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("listen", s.cfg.Server.Listen).Msg("serving api")
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// record snapshots the data directory (when auto-commit is on) and appends
// an audit entry. Failures are logged, never surfaced to the client: the
// domain change already happened.
func (s *Server) record(action, details, transactionID string) {
	var hash string
	if s.cfg.Git.AutoCommit && gitops.IsRepo(s.st.Dir()) {
		var err error
		hash, err = gitops.CommitData(s.st.Dir(), action+": "+details, s.cfg.Git.AuthorName, s.cfg.Git.AuthorEmail)
		if err != nil {
			s.log.Warn().Err(err).Str("action", action).Msg("auto-commit failed")
		}
	}
	err := auditlog.Append(s.st.Dir(), []auditlog.Entry{{
		Timestamp:     time.Now().UTC(),
		Actor:         auditlog.ActorAPI,
		Action:        action,
		Details:       details,
		TransactionID: transactionID,
		CommitHash:    hash,
	}})
	if err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("audit log append failed")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
