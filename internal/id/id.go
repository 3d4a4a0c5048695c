package id

import (
	"strings"

	"github.com/google/uuid"
)

const (
	txnPrefix    = "txn_"
	importPrefix = "imp_"
)

// NewTransaction returns a new opaque transaction ID like
// "txn_9f1c2d3e-...". IDs are assigned once at import time and stay stable
// for the transaction's lifetime.
func NewTransaction() string {
	return txnPrefix + uuid.NewString()
}

// NewImport returns a new import batch ID like "imp_9f1c2d3e-...".
// One batch ID covers every transaction of a single statement upload.
func NewImport() string {
	return importPrefix + uuid.NewString()
}

// IsTransaction reports whether s is a well-formed transaction ID.
func IsTransaction(s string) bool {
	raw, ok := strings.CutPrefix(s, txnPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}
