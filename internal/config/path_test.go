package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FLOW_BOOKS", "/srv/books")

	tests := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "~", expected: home},
		{input: "~/ledger.gnucash", expected: filepath.Join(home, "ledger.gnucash")},
		{input: "$FLOW_BOOKS/2024.csv", expected: "/srv/books/2024.csv"},
		{input: "/tmp/plain.csv", expected: "/tmp/plain.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}

func TestSearchPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(home, ".config", "flow"), "."}, SearchPaths())
}
