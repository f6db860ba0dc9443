// Package importer turns external transaction files into canonical transactions.
//
// A file is sniffed once to select its Format, then handed to the matching
// Importer. Every importer applies the budgeting period as a filter and either
// returns the complete result or an *common.ImportError with no partial data.
package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/Veraticus/estimate-flow/internal/model"
)

// Importer reads one bounded stream of transactions.
type Importer interface {
	// Import decodes r and returns the transactions that fall inside period, in file order.
	Import(ctx context.Context, r io.Reader, period model.Period) ([]model.Transaction, error)
}

// Format is the detected layout of an import file.
type Format int

// Supported formats, in detection order.
const (
	FormatUnknown Format = iota
	FormatNative
	FormatGnuCash
	FormatMint
	FormatCSV
	FormatOFX
)

func (f Format) String() string {
	switch f {
	case FormatNative:
		return "transaction-xml"
	case FormatGnuCash:
		return "gnucash"
	case FormatMint:
		return "mint-csv"
	case FormatCSV:
		return "csv"
	case FormatOFX:
		return "ofx"
	default:
		return "unknown"
	}
}

// Options tunes importer construction.
type Options struct {
	// Progress receives byte counts while the stream is consumed. Optional.
	Progress Progress
	// Profile replaces CSV header detection with an explicit column layout.
	Profile *Profile
	// DateLayout overrides the CSV date layout when no profile is given.
	DateLayout string
}

// New returns the importer for a detected format.
func New(format Format, opts Options) (Importer, error) {
	switch format {
	case FormatNative:
		return NewNativeImporter(), nil
	case FormatGnuCash:
		return NewGnuCashImporter(), nil
	case FormatMint:
		return NewMintImporter(), nil
	case FormatCSV:
		if opts.Profile != nil {
			return NewProfileCSVImporter(*opts.Profile), nil
		}
		return NewCSVImporter(opts.DateLayout), nil
	case FormatOFX:
		return NewOFXImporter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, format)
	}
}

var (
	_ Importer = (*NativeImporter)(nil)
	_ Importer = (*GnuCashImporter)(nil)
	_ Importer = (*MintImporter)(nil)
	_ Importer = (*CSVImporter)(nil)
	_ Importer = (*OFXImporter)(nil)
)
