package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTransaction(t *testing.T) {
	got := NewTransaction()
	assert.True(t, strings.HasPrefix(got, "txn_"))
	assert.True(t, IsTransaction(got))
}

func TestNewTransaction_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewTransaction()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewImport(t *testing.T) {
	got := NewImport()
	assert.True(t, strings.HasPrefix(got, "imp_"))
	assert.False(t, IsTransaction(got))
}

func TestIsTransaction(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"txn_6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"txn_not-a-uuid", false},
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"imp_6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTransaction(tt.input), "input %q", tt.input)
	}
}
