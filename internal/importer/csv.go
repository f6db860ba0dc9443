package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultDateLayout matches dates such as 3/05/2024 and 12/5/2024.
const DefaultDateLayout = "1/2/2006"

// Column is the transaction role of a CSV column.
type Column string

// Column roles. Category and account are directional: which one is the
// deposit depends on the row's transaction type.
const (
	ColumnNone     Column = "none"
	ColumnDate     Column = "date"
	ColumnValue    Column = "value"
	ColumnMemo     Column = "memo"
	ColumnPayee    Column = "payee"
	ColumnCategory Column = "category"
	ColumnAccount  Column = "account"
	ColumnType     Column = "type"
)

// ParseColumn resolves a profile column name. Unknown names are an error.
func ParseColumn(name string) (Column, error) {
	switch c := Column(strings.ToLower(strings.TrimSpace(name))); c {
	case ColumnNone, ColumnDate, ColumnValue, ColumnMemo, ColumnPayee,
		ColumnCategory, ColumnAccount, ColumnType:
		return c, nil
	case "amount":
		return ColumnValue, nil
	case "":
		return ColumnNone, nil
	default:
		return ColumnNone, fmt.Errorf("unknown CSV column role %q", name)
	}
}

// Profile is a user-defined CSV layout used instead of header detection.
type Profile struct {
	Name       string
	DateLayout string
	Columns    []Column
	HasHeader  bool
}

// CSVImporter reads comma-separated files.
type CSVImporter struct {
	profile *Profile
	layout  string
}

// NewCSVImporter creates an importer that maps columns from the header line.
func NewCSVImporter(dateLayout string) *CSVImporter {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return &CSVImporter{layout: dateLayout}
}

// NewProfileCSVImporter creates an importer with a fixed column layout.
func NewProfileCSVImporter(profile Profile) *CSVImporter {
	layout := profile.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}
	return &CSVImporter{profile: &profile, layout: layout}
}

// Import reads the header (unless a profile supplies the layout) and decodes every row.
func (c *CSVImporter) Import(ctx context.Context, r io.Reader, period model.Period) ([]model.Transaction, error) {
	lines := newLineReader(r)

	var columns []Column
	switch {
	case c.profile != nil:
		columns = c.profile.Columns
		if c.profile.HasHeader {
			if _, err := lines.next(); err != nil && !errors.Is(err, io.EOF) {
				return nil, common.NewFatalError("Unable to read file", err)
			}
		}
	default:
		header, err := lines.next()
		if errors.Is(err, io.EOF) {
			return nil, common.NewFatalError("Unable to read file", io.ErrUnexpectedEOF)
		}
		if err != nil {
			return nil, common.NewFatalError("Unable to read file", err)
		}
		columns = classifyHeader(header)
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
		values := splitRecord(line)
		if len(values) != len(columns) {
			return nil, common.NewMalformedRecordError(lines.number,
				fmt.Sprintf("Invalid transaction record read: %d fields, expected %d", len(values), len(columns)))
		}

		txn, keep, err := c.decodeRecord(ctx, lines.number, columns, values, period)
		if err != nil {
			return nil, err
		}
		if keep {
			transactions = append(transactions, txn)
		}
	}

	slog.InfoContext(ctx, "Parsed CSV file", "total_transactions", len(transactions))

	return transactions, nil
}

// decodeRecord assembles one row. Direction is fixed only after the whole row
// is read, so the type column may appear anywhere.
func (c *CSVImporter) decodeRecord(ctx context.Context, line int, columns []Column, values []string, period model.Period) (model.Transaction, bool, error) {
	var (
		date     = time.Now()
		payee    string
		memo     string
		amount   decimal.Decimal
		txnType  string
		category string
		account  string
	)

	for i, column := range columns {
		value := strip(values[i])

		switch column {
		case ColumnDate:
			parsed, err := time.Parse(c.layout, value)
			if err != nil {
				slog.WarnContext(ctx, "Error parsing date field", "line", line, "value", value, "error", err)
				break
			}
			date = parsed
			if !period.Contains(date) {
				return model.Transaction{}, false, nil
			}
		case ColumnValue:
			parsed, err := parseAmount(value)
			if err != nil {
				return model.Transaction{}, false, &common.ImportError{
					Kind: common.KindFatal, Message: "Invalid amount " + value, Line: line, Err: err,
				}
			}
			amount = parsed
		case ColumnMemo:
			memo = value
		case ColumnPayee:
			payee = value
		case ColumnType:
			txnType = value
		case ColumnCategory:
			category = value
		case ColumnAccount:
			account = value
		}
	}

	withdrawal, deposit := directAccounts(txnType, category, account)
	return model.NewTransaction(date, payee, memo, amount, withdrawal, deposit), true, nil
}

// directAccounts resolves the category/account pair: for a debit the category
// receives the money, otherwise the account does. The type is case-sensitive,
// so "Debit" is treated as a credit.
func directAccounts(txnType, category, account string) (withdrawal, deposit *model.Account) {
	if strings.TrimSpace(txnType) == "debit" {
		return accountFromName(account), accountFromName(category)
	}
	return accountFromName(category), accountFromName(account)
}

func accountFromName(name string) *model.Account {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return model.ParseAccount(name)
}

// classifyHeader maps header cells to roles. The order of the checks decides
// ties, e.g. "Transaction Date" is a date and "Account Type" an account.
func classifyHeader(header string) []Column {
	names := splitRecord(header)
	columns := make([]Column, len(names))

	for i, name := range names {
		field := strings.ToLower(strip(name))

		switch {
		case strings.Contains(field, "date"):
			columns[i] = ColumnDate
		case strings.Contains(field, "value") || strings.Contains(field, "amount"):
			columns[i] = ColumnValue
		case strings.Contains(field, "memo") || strings.Contains(field, "notes"):
			columns[i] = ColumnMemo
		case strings.Contains(field, "payee") || strings.HasPrefix(field, "description"):
			columns[i] = ColumnPayee
		case strings.Contains(field, "category"):
			columns[i] = ColumnCategory
		case strings.Contains(field, "account"):
			columns[i] = ColumnAccount
		case strings.Contains(field, "type"):
			columns[i] = ColumnType
		default:
			columns[i] = ColumnNone
		}
	}

	return columns
}

// splitRecord splits on commas that are outside double-quoted sections.
func splitRecord(line string) []string {
	var (
		fields  []string
		start   int
		inQuote bool
	)
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				fields = append(fields, line[start:i])
				start = i + 1
			}
		}
	}
	return append(fields, line[start:])
}

// strip removes surrounding quotes and un-escapes doubled quotes.
func strip(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimSuffix(value, `"`)
	return strings.ReplaceAll(value, `""`, `"`)
}

// parseAmount accepts plain decimals plus currency symbols and grouping commas.
func parseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(value)
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + strings.Trim(cleaned, "()")
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Abs(), nil
}

// lineReader yields lines without their terminators and tracks the line number.
type lineReader struct {
	br     *bufio.Reader
	number int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{br: bufio.NewReader(r)}
}

func (l *lineReader) next() (string, error) {
	line, err := l.br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	l.number++
	if l.number == 1 {
		line = strings.TrimPrefix(line, "\ufeff")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
