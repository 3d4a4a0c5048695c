package merchant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"COLES 0645 OAKLEIGH 03", "coles 0645 oakleigh 03"},
		{"  COLES 0645 OAKLEIGH 03  ", "coles 0645 oakleigh 03"},
		{"Coles   0645   Oakleigh 03", "coles 0645 oakleigh 03"},
		{"GITHUB, INC.", "github, inc."},
		{"\tUBER *TRIP\n", "uber *trip"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Key(tt.input), "input %q", tt.input)
	}
}

func TestKey_StableAcrossImports(t *testing.T) {
	// The same statement line must always derive the same key, whatever
	// whitespace the bank export wraps it in.
	variants := []string{
		"WOOLWORTHS 1234 MELBOURNE",
		" WOOLWORTHS 1234 MELBOURNE",
		"woolworths 1234 melbourne ",
		"Woolworths  1234  Melbourne",
	}
	for _, v := range variants {
		assert.Equal(t, "woolworths 1234 melbourne", Key(v))
	}
}
