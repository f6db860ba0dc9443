package cli

import (
	"bytes"
	"testing"

	"github.com/Veraticus/estimate-flow/internal/importer"
	"github.com/stretchr/testify/assert"
)

var _ importer.Progress = (*ImportProgress)(nil)

func TestImportProgress(t *testing.T) {
	var out bytes.Buffer
	p := NewImportProgress(&out, "march.csv", 100)

	p.Update(40)
	assert.Equal(t, int64(40), p.Current())

	p.Update(100)
	p.Complete()
	assert.Equal(t, int64(100), p.Current())
}
