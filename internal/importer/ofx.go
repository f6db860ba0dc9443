package importer

import (
	"context"
	"io"

	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/Veraticus/estimate-flow/internal/ofx"
)

// OFXImporter adapts the OFX statement parser to the Importer interface.
type OFXImporter struct {
	parser *ofx.Parser
}

// NewOFXImporter creates an OFX/QFX importer.
func NewOFXImporter() *OFXImporter {
	return &OFXImporter{parser: ofx.NewParser()}
}

// Import parses a statement. Any parse failure is fatal.
func (o *OFXImporter) Import(ctx context.Context, r io.Reader, period model.Period) ([]model.Transaction, error) {
	transactions, err := o.parser.ParseFile(ctx, r, period)
	if err != nil {
		return nil, common.NewFatalError("Unable to parse OFX file", err)
	}
	return transactions, nil
}
