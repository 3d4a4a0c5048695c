package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/merchant"
	"github.com/tally-dev/tally/internal/model"
)

// ParseError reports a malformed statement row. One bad row rejects the
// whole import: the batch either fully parses or nothing is imported.
type ParseError struct {
	Row int // 1-based row number in the file
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StatementParser parses bank statement CSV exports in the
// DD/MM/YYYY,"amount","description","" format.
type StatementParser struct{}

const (
	statementDateFormat = "02/01/2006"
	statementNumFields  = 4
	statementColDate    = 0
	statementColAmount  = 1
	statementColDesc    = 2
)

// Format returns the parser name.
func (p *StatementParser) Format() string { return "statement" }

// Parse reads a statement CSV and returns transaction drafts: no ID yet,
// status pending, merchant key derived from the description.
func (p *StatementParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = statementNumFields

	var txns []model.Transaction
	row := 0
	for {
		row++
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Row: row, Err: err}
		}

		txn, err := parseStatementRow(rec)
		if err != nil {
			return nil, &ParseError{Row: row, Err: err}
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseStatementRow(rec []string) (model.Transaction, error) {
	date, err := time.Parse(statementDateFormat, rec[statementColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", rec[statementColDate], err)
	}

	amount, err := parseAmount(rec[statementColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[statementColAmount], err)
	}

	desc := strings.TrimSpace(rec[statementColDesc])

	return model.Transaction{
		Date:        date,
		Amount:      amount,
		Description: desc,
		MerchantKey: merchant.Key(desc),
		SuggestedBy: model.SuggestedByNone,
		Status:      model.StatusPending,
	}, nil
}

// parseAmount parses a signed decimal, tolerating currency formatting the
// bank wraps around the number. The sign is preserved.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "+")
	return decimal.NewFromString(cleaned)
}
