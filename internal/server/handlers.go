package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/reconcile"
	"github.com/tally-dev/tally/internal/report"
)

func (s *Server) handleUploadCSV(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	format := c.DefaultPostForm("format", "statement")
	parser := s.reg.Get(format)
	if parser == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown statement format %q", format)})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	s.mu.Lock()
	sum, err := importer.Import(c.Request.Context(), s.st, s.eng, parser, f)
	s.mu.Unlock()
	if err != nil {
		var perr *importer.ParseError
		if errors.As(err, &perr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "row": perr.Row})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.record("import", fmt.Sprintf("%s: %d transactions (%d cached, %d ai, %d unsuggested)",
		header.Filename, sum.Imported, sum.FromCache, sum.FromAI, sum.Unsuggested), "")

	resp := gin.H{
		"success":      true,
		"import_id":    sum.ImportID,
		"imported":     sum.Imported,
		"from_cache":   sum.FromCache,
		"from_ai":      sum.FromAI,
		"unsuggested":  sum.Unsuggested,
		"ai_available": sum.ProviderErr == nil,
	}
	if sum.ProviderErr != nil {
		resp["ai_error"] = sum.ProviderErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListTransactions(c *gin.Context) {
	filter := c.DefaultQuery("filter", "all")

	var out []transactionJSON
	for _, t := range s.st.Transactions() {
		if filter != "all" && string(t.Status) != filter {
			continue
		}
		out = append(out, marshalTransaction(t))
	}
	if out == nil {
		out = []transactionJSON{}
	}
	c.JSON(http.StatusOK, out)
}

type reconcileRequest struct {
	TransactionID string `json:"transaction_id"`
	CategoryCode  string `json:"category_code"`
}

func (s *Server) handleReconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.TransactionID == "" || req.CategoryCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_id and category_code are required"})
		return
	}

	s.mu.Lock()
	txn, err := s.ctl.ReconcileOne(req.TransactionID, req.CategoryCode)
	s.mu.Unlock()
	if err != nil {
		var nf *reconcile.NotFoundError
		var is *reconcile.InvalidStateError
		switch {
		case errors.As(err, &nf):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.As(err, &is):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	s.record("reconcile", fmt.Sprintf("%s -> %s", txn.ID, txn.CategoryCode), txn.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": marshalTransaction(txn)})
}

func (s *Server) handleReconcileAll(c *gin.Context) {
	s.mu.Lock()
	res, err := s.ctl.ReconcileAll()
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if res.Reconciled > 0 {
		s.record("reconcile-all", fmt.Sprintf("%d reconciled, %d skipped", res.Reconciled, res.Skipped), "")
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reconciled": res.Reconciled, "skipped": res.Skipped})
}

func (s *Server) handleListCategories(c *gin.Context) {
	out := make([]categoryJSON, 0)
	for _, cat := range s.st.Categories() {
		out = append(out, marshalCategory(cat))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleAddCategory(c *gin.Context) {
	var req categoryJSON
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	svc := categories.NewService(s.st.Categories())
	if err := svc.Add(unmarshalCategory(req)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.st.SaveCategories(svc.All()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	var req categoryJSON
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Code = c.Param("code")

	s.mu.Lock()
	defer s.mu.Unlock()
	svc := categories.NewService(s.st.Categories())
	if err := svc.Update(unmarshalCategory(req)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := s.st.SaveCategories(svc.All()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleRemoveCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc := categories.NewService(s.st.Categories())
	if err := svc.Remove(c.Param("code")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := s.st.SaveCategories(svc.All()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleAnalysis(c *gin.Context) {
	filter := report.Filter(strings.ToLower(c.DefaultQuery("type", "expenses")))
	switch filter {
	case report.FilterExpenses, report.FilterIncome, report.FilterAll:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown analysis type %q", filter)})
		return
	}

	totals := report.ByCategory(s.st.Transactions(), s.st.Categories(), filter)
	out := make([]analysisJSON, 0, len(totals))
	for _, ct := range totals {
		out = append(out, marshalAnalysis(ct))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleClearTransactions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.SaveTransactions([]model.Transaction{}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleClearData(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.SaveTransactions([]model.Transaction{}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.st.SaveMerchants(nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.ctl.Cache().Replace(nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
