// Package store persists the three data collections — categories,
// transactions, merchant cache — as JSON files under a data directory.
// Each collection is loaded fully at Open and rewritten fully on mutation
// via write-to-temp-then-rename, so a crash mid-save never leaves a partial
// file behind.
//
// The store is written by one request at a time; concurrent writers are not
// supported and last writer wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tally-dev/tally/internal/merchant"
	"github.com/tally-dev/tally/internal/model"
)

const (
	categoriesFile   = "categories.json"
	transactionsFile = "transactions.json"
	merchantsFile    = "merchant-cache.json"
)

// Store holds the in-memory state of the data directory.
type Store struct {
	dir          string
	categories   []model.Category
	transactions []model.Transaction
	merchants    map[string]merchant.Entry
}

// Open loads all collections from dir. Missing files are treated as empty
// collections so a freshly initialized directory opens cleanly.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir, merchants: make(map[string]merchant.Entry)}

	if err := s.loadCategories(); err != nil {
		return nil, err
	}
	if err := s.loadTransactions(); err != nil {
		return nil, err
	}
	if err := s.loadMerchants(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the data directory the store was opened at.
func (s *Store) Dir() string { return s.dir }

// Categories returns a copy of all categories.
func (s *Store) Categories() []model.Category {
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// SaveCategories replaces and persists the category list.
func (s *Store) SaveCategories(cats []model.Category) error {
	rows := make([]categoryRow, len(cats))
	for i, c := range cats {
		rows[i] = marshalCategory(c)
	}
	if err := s.writeJSON(categoriesFile, rows); err != nil {
		return err
	}
	s.categories = make([]model.Category, len(cats))
	copy(s.categories, cats)
	return nil
}

// Transactions returns a copy of all transactions, newest date first.
func (s *Store) Transactions() []model.Transaction {
	out := make([]model.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// SaveTransactions replaces and persists the transaction list, sorted by
// date descending.
func (s *Store) SaveTransactions(txns []model.Transaction) error {
	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	if err := s.writeJSON(transactionsFile, marshalTransactions(sorted)); err != nil {
		return err
	}
	s.transactions = sorted
	return nil
}

// MerchantEntries returns a copy of the persisted merchant cache.
func (s *Store) MerchantEntries() map[string]merchant.Entry {
	out := make(map[string]merchant.Entry, len(s.merchants))
	for k, e := range s.merchants {
		out[k] = e
	}
	return out
}

// SaveMerchants replaces and persists the merchant cache.
func (s *Store) SaveMerchants(entries map[string]merchant.Entry) error {
	if err := s.writeJSON(merchantsFile, marshalMerchants(entries)); err != nil {
		return err
	}
	s.merchants = make(map[string]merchant.Entry, len(entries))
	for k, e := range entries {
		s.merchants[k] = e
	}
	return nil
}

// SaveReconciliation persists a transaction update together with its
// merchant cache update as one unit: either both files land on disk or the
// transactions file is rolled back to its previous contents and the
// in-memory state stays unchanged.
func (s *Store) SaveReconciliation(txns []model.Transaction, entries map[string]merchant.Entry) error {
	prev, err := json.MarshalIndent(marshalTransactions(s.transactions), "", "  ")
	if err != nil {
		return fmt.Errorf("snapshotting transactions: %w", err)
	}

	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	if err := s.writeJSON(transactionsFile, marshalTransactions(sorted)); err != nil {
		return err
	}

	if err := s.writeJSON(merchantsFile, marshalMerchants(entries)); err != nil {
		if rbErr := writeFileAtomic(filepath.Join(s.dir, transactionsFile), prev); rbErr != nil {
			return fmt.Errorf("saving merchant cache: %w (rollback failed: %v)", err, rbErr)
		}
		return fmt.Errorf("saving merchant cache: %w", err)
	}

	s.transactions = sorted
	s.merchants = make(map[string]merchant.Entry, len(entries))
	for k, e := range entries {
		s.merchants[k] = e
	}
	return nil
}

func marshalTransactions(txns []model.Transaction) []transactionRow {
	rows := make([]transactionRow, len(txns))
	for i, t := range txns {
		rows[i] = marshalTransaction(t)
	}
	return rows
}

func marshalMerchants(entries map[string]merchant.Entry) map[string]merchantRow {
	rows := make(map[string]merchantRow, len(entries))
	for k, e := range entries {
		rows[k] = marshalMerchant(e)
	}
	return rows
}

func (s *Store) loadCategories() error {
	var rows []categoryRow
	if err := s.readJSON(categoriesFile, &rows); err != nil {
		return err
	}
	s.categories = make([]model.Category, len(rows))
	for i, row := range rows {
		s.categories[i] = unmarshalCategory(row)
	}
	return nil
}

func (s *Store) loadTransactions() error {
	var rows []transactionRow
	if err := s.readJSON(transactionsFile, &rows); err != nil {
		return err
	}
	s.transactions = make([]model.Transaction, 0, len(rows))
	for i, row := range rows {
		txn, err := unmarshalTransaction(row)
		if err != nil {
			return fmt.Errorf("%s entry %d: %w", transactionsFile, i, err)
		}
		s.transactions = append(s.transactions, txn)
	}
	return nil
}

func (s *Store) loadMerchants() error {
	var rows map[string]merchantRow
	if err := s.readJSON(merchantsFile, &rows); err != nil {
		return err
	}
	s.merchants = make(map[string]merchant.Entry, len(rows))
	for k, row := range rows {
		e, err := unmarshalMerchant(row)
		if err != nil {
			return fmt.Errorf("%s key %q: %w", merchantsFile, k, err)
		}
		s.merchants[k] = e
	}
	return nil
}

func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, name), data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the same directory, then
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
