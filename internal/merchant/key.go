package merchant

import "strings"

// Key derives the normalized cache key for a raw statement description.
// Keys are lowercase with outer whitespace trimmed and interior runs of
// whitespace collapsed to a single space. Cache correctness depends on this
// being stable across imports.
func Key(description string) string {
	fields := strings.Fields(strings.ToLower(description))
	return strings.Join(fields, " ")
}
