package importer

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/Veraticus/estimate-flow/internal/model"
)

// NativeProlog is the XML declaration written at the top of exported files.
const NativeProlog = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n"

// nativeRecord is the on-disk shape of one exported transaction.
type nativeRecord struct {
	XMLName    xml.Name `xml:"transaction"`
	Date       string   `xml:"date-posted"`
	Payee      string   `xml:"payee"`
	Memo       string   `xml:"memo,omitempty"`
	Amount     string   `xml:"amount"`
	Withdrawal string   `xml:"withdrawal-acct,omitempty"`
	Deposit    string   `xml:"deposit-acct,omitempty"`
}

// NativeImporter reads the transaction XML written by WriteNative.
type NativeImporter struct{}

// NewNativeImporter creates an importer for exported transaction files.
func NewNativeImporter() *NativeImporter {
	return &NativeImporter{}
}

// Import decodes each <transaction> element as it is reached.
func (n *NativeImporter) Import(ctx context.Context, r io.Reader, period model.Period) ([]model.Transaction, error) {
	d := xml.NewDecoder(r)

	var (
		transactions []model.Transaction
		record       int
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.NewFatalError("Unable to parse transaction file", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "transaction" {
			continue
		}
		record++

		var rec nativeRecord
		if err := d.DecodeElement(&rec, &start); err != nil {
			return nil, common.NewFatalError("Unable to parse transaction file", err)
		}

		date, err := time.Parse(model.DateLayout, rec.Date)
		if err != nil {
			slog.WarnContext(ctx, "Skipping transaction with invalid date", "record", record, "value", rec.Date)
			continue
		}
		if !period.Contains(date) {
			continue
		}

		amount, err := parseAmount(rec.Amount)
		if err != nil {
			return nil, common.NewFatalError(fmt.Sprintf("Invalid amount %q in record %d", rec.Amount, record), err)
		}

		transactions = append(transactions, model.NewTransaction(
			date, rec.Payee, rec.Memo, amount,
			accountFromName(rec.Withdrawal), accountFromName(rec.Deposit),
		))
	}

	slog.InfoContext(ctx, "Parsed transaction file", "total_transactions", len(transactions))

	return transactions, nil
}

// WriteNative exports transactions in the format NativeImporter reads.
func WriteNative(w io.Writer, transactions []model.Transaction) error {
	if _, err := io.WriteString(w, NativeProlog); err != nil {
		return fmt.Errorf("failed to write prolog: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "transactions"}}
	if err := enc.EncodeToken(root); err != nil {
		return fmt.Errorf("failed to start document: %w", err)
	}

	for _, txn := range transactions {
		rec := nativeRecord{
			Date:       txn.Date.Format(model.DateLayout),
			Payee:      txn.Payee,
			Memo:       txn.Memo,
			Amount:     txn.FormattedAmount(),
			Withdrawal: txn.Withdrawal.FullName(),
			Deposit:    txn.Deposit.FullName(),
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write transaction %s: %w", txn, err)
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("failed to end document: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush document: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}
