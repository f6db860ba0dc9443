package importer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/klauspost/compress/gzip"
)

const sniffSize = 4096

var gzipMagic = []byte{0x1f, 0x8b}

// Detect inspects the first two lines of br without consuming them and
// reports the file format. A stream nobody recognizes yields
// common.ErrUnsupportedFormat; a read failure yields a fatal ImportError.
func Detect(br *bufio.Reader) (Format, error) {
	head, err := peek(br)
	if err != nil {
		return FormatUnknown, err
	}

	first, second := firstLines(head)

	switch {
	case containsFold(first, "<transactions") || containsFold(second, "<transactions"):
		return FormatNative, nil
	case containsFold(first, "<gnc-v2") || containsFold(second, "<gnc-v2"):
		return FormatGnuCash, nil
	case isMintHeader(first):
		return FormatMint, nil
	case isCSVHeader(first):
		return FormatCSV, nil
	case isOFXMarker(first) || isOFXMarker(second):
		return FormatOFX, nil
	}

	return FormatUnknown, common.ErrUnsupportedFormat
}

// Run sniffs r, selects the importer and imports it. Gzip-compressed input is
// decompressed transparently. With a CSV profile, input no format recognizes
// is read as CSV. Progress, when set, counts raw bytes read from r.
func Run(ctx context.Context, r io.Reader, period model.Period, opts Options) ([]model.Transaction, Format, error) {
	br := bufio.NewReaderSize(newProgressReader(r, opts.Progress), sniffSize)

	head, err := peek(br)
	if err != nil {
		return nil, FormatUnknown, err
	}
	if bytes.HasPrefix(head, gzipMagic) {
		zr, zerr := gzip.NewReader(br)
		if zerr != nil {
			return nil, FormatUnknown, common.NewFatalError("Unable to decompress file", zerr)
		}
		defer func() { _ = zr.Close() }()
		br = bufio.NewReaderSize(zr, sniffSize)
	}

	format, err := Detect(br)
	if errors.Is(err, common.ErrUnsupportedFormat) && opts.Profile != nil {
		// Headerless profiles start with a data row, which nothing recognizes.
		format, err = FormatCSV, nil
	}
	if err != nil {
		return nil, format, err
	}

	imp, err := New(format, opts)
	if err != nil {
		return nil, format, err
	}

	slog.Debug("Detected import format", "format", format.String())

	transactions, err := imp.Import(ctx, br, period)
	if err != nil {
		return nil, format, err
	}

	if opts.Progress != nil {
		opts.Progress.Complete()
	}

	return transactions, format, nil
}

// ImportFile imports the file at path and sorts the result by date.
func ImportFile(ctx context.Context, path string, period model.Period, opts Options) ([]model.Transaction, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, FormatUnknown, common.NewFatalError("Import file not found", err)
	}
	defer func() { _ = f.Close() }()

	transactions, format, err := Run(ctx, f, period, opts)
	if err != nil {
		return nil, format, fmt.Errorf("failed to import %s: %w", path, err)
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})

	return transactions, format, nil
}

func peek(br *bufio.Reader) ([]byte, error) {
	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, common.NewFatalError("Unable to read file", err)
	}
	return head, nil
}

func firstLines(head []byte) (string, string) {
	text := strings.TrimPrefix(string(head), "\ufeff")
	lines := strings.SplitN(text, "\n", 3)

	first := strings.TrimSpace(lines[0])
	second := ""
	if len(lines) > 1 {
		second = strings.TrimSpace(lines[1])
	}
	return first, second
}

// isCSVHeader wants a comma-separated line with at least two recognized
// columns, so prose that happens to contain "date" or "notes" is rejected.
func isCSVHeader(line string) bool {
	if line == "" || strings.HasPrefix(line, "<") {
		return false
	}
	recognized := 0
	for _, column := range classifyHeader(line) {
		if column != ColumnNone {
			recognized++
		}
	}
	return recognized >= 2
}

func isOFXMarker(line string) bool {
	return containsFold(line, "OFXHEADER") || containsFold(line, "<OFX>") || containsFold(line, "<?OFX")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
