package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/Veraticus/estimate-flow/internal/model"
)

// MintHeader is the header line of a Mint transaction export.
const MintHeader = `"Date","Description","Original Description","Amount","Transaction Type","Category","Account Name","Labels","Notes"`

const mintFieldCount = 9

// Mint column positions.
const (
	mintDate = iota
	mintDescription
	mintOriginalDescription
	mintAmount
	mintType
	mintCategory
	mintAccount
	mintLabels
	mintNotes
)

// MintImporter reads Mint CSV exports. Every field is quoted and the layout is fixed.
type MintImporter struct {
	layout string
}

// NewMintImporter creates a Mint CSV importer.
func NewMintImporter() *MintImporter {
	return &MintImporter{layout: DefaultDateLayout}
}

// Import skips the header and decodes each row.
func (m *MintImporter) Import(ctx context.Context, r io.Reader, period model.Period) ([]model.Transaction, error) {
	lines := newLineReader(r)

	if _, err := lines.next(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, common.NewFatalError("Unable to read file", io.ErrUnexpectedEOF)
		}
		return nil, common.NewFatalError("Unable to read file", err)
	}

	var transactions []model.Transaction
	for {
		line, err := lines.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.NewFatalError("Unable to read file", err)
		}
		fields := splitMintRecord(line)
		if len(fields) != mintFieldCount {
			return nil, common.NewMalformedRecordError(lines.number,
				fmt.Sprintf("Invalid Mint record read: %d fields, expected %d", len(fields), mintFieldCount))
		}

		date := time.Now()
		if parsed, err := time.Parse(m.layout, fields[mintDate]); err != nil {
			slog.WarnContext(ctx, "Error parsing date field", "line", lines.number, "value", fields[mintDate], "error", err)
		} else {
			date = parsed
			if !period.Contains(date) {
				continue
			}
		}

		amount, err := parseAmount(fields[mintAmount])
		if err != nil {
			return nil, &common.ImportError{
				Kind: common.KindFatal, Message: "Invalid amount " + fields[mintAmount], Line: lines.number, Err: err,
			}
		}

		withdrawal, deposit := directAccounts(fields[mintType], fields[mintCategory], fields[mintAccount])
		transactions = append(transactions, model.NewTransaction(
			date,
			strings.TrimSpace(fields[mintDescription]),
			strings.TrimSpace(fields[mintNotes]),
			amount,
			withdrawal,
			deposit,
		))
	}

	slog.InfoContext(ctx, "Parsed Mint file", "total_transactions", len(transactions))

	return transactions, nil
}

// splitMintRecord splits a fully quoted row on the literal "," separator.
// Empty fields ("") are widened first so they survive the split.
func splitMintRecord(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.ReplaceAll(line, `""`, `" "`)
	if len(line) < 2 {
		return []string{line}
	}
	return strings.Split(line[1:len(line)-1], `","`)
}

func isMintHeader(line string) bool {
	return strings.EqualFold(strings.ReplaceAll(line, " ", ""), strings.ReplaceAll(MintHeader, " ", ""))
}
