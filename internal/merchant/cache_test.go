package merchant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_LookupMiss(t *testing.T) {
	c := NewCache(nil)
	code, ok := c.Lookup("coles 0645 oakleigh 03")
	assert.False(t, ok)
	assert.Empty(t, code)
	assert.Zero(t, c.Len())
}

func TestCache_LearnAndLookup(t *testing.T) {
	c := NewCache(nil)
	c.Learn("coles 0645 oakleigh 03", "100", "txn_abc")

	code, ok := c.Lookup("coles 0645 oakleigh 03")
	require.True(t, ok)
	assert.Equal(t, "100", code)

	e := c.Entries()["coles 0645 oakleigh 03"]
	assert.Equal(t, "txn_abc", e.LearnedFrom)
	assert.False(t, e.LearnedAt.IsZero())
}

func TestCache_LastReconciliationWins(t *testing.T) {
	c := NewCache(nil)
	c.Learn("optus prepaid", "500", "txn_1")
	c.Learn("optus prepaid", "900", "txn_2")

	code, ok := c.Lookup("optus prepaid")
	require.True(t, ok)
	assert.Equal(t, "900", code)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "txn_2", c.Entries()["optus prepaid"].LearnedFrom)
}

func TestCache_EntriesIsACopy(t *testing.T) {
	c := NewCache(map[string]Entry{
		"github, inc.": {CategoryCode: "600"},
	})

	snapshot := c.Entries()
	snapshot["github, inc."] = Entry{CategoryCode: "999"}

	code, ok := c.Lookup("github, inc.")
	require.True(t, ok)
	assert.Equal(t, "600", code, "mutating the snapshot must not touch the cache")
}

func TestNewCache_CopiesInput(t *testing.T) {
	seed := map[string]Entry{"uber *trip": {CategoryCode: "300"}}
	c := NewCache(seed)
	seed["uber *trip"] = Entry{CategoryCode: "100"}

	code, _ := c.Lookup("uber *trip")
	assert.Equal(t, "300", code)
}
