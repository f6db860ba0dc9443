package common

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelWarn, "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("Skipping GnuCash split", "account_id", "abc")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Skipping GnuCash split", record["msg"])
	assert.Equal(t, "abc", record["account_id"])

	buf.Reset()
	logger, err = NewLogger(&buf, slog.LevelInfo, "console")
	require.NoError(t, err)
	logger.Info("Parsed GnuCash file", "transactions", 3)
	assert.Contains(t, buf.String(), "transactions=3")

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
