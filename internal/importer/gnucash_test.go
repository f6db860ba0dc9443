package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gncHeader = `<?xml version="1.0" encoding="utf-8" ?>
<gnc-v2
     xmlns:gnc="http://www.gnucash.org/XML/gnc"
     xmlns:act="http://www.gnucash.org/XML/act"
     xmlns:book="http://www.gnucash.org/XML/book"
     xmlns:cmdty="http://www.gnucash.org/XML/cmdty"
     xmlns:trn="http://www.gnucash.org/XML/trn"
     xmlns:split="http://www.gnucash.org/XML/split"
     xmlns:ts="http://www.gnucash.org/XML/ts">
<gnc:book version="2.0.0">
<book:id type="guid">book0001</book:id>
<gnc:account version="2.0.0">
  <act:name>Root Account</act:name>
  <act:id type="guid">root</act:id>
  <act:type>ROOT</act:type>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Assets</act:name>
  <act:id type="guid">assets</act:id>
  <act:type>ASSET</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>USD</cmdty:id>
  </act:commodity>
  <act:parent type="guid">root</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Checking</act:name>
  <act:id type="guid">checking</act:id>
  <act:type>BANK</act:type>
  <act:parent type="guid">assets</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Savings</act:name>
  <act:id type="guid">savings</act:id>
  <act:type>BANK</act:type>
  <act:parent type="guid">assets</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Expenses</act:name>
  <act:id type="guid">expenses</act:id>
  <act:type>EXPENSE</act:type>
  <act:parent type="guid">root</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Groceries</act:name>
  <act:id type="guid">groceries</act:id>
  <act:type>EXPENSE</act:type>
  <act:parent type="guid">expenses</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Household</act:name>
  <act:id type="guid">household</act:id>
  <act:type>EXPENSE</act:type>
  <act:parent type="guid">expenses</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Orphan</act:name>
  <act:id type="guid">orphan</act:id>
  <act:type>EXPENSE</act:type>
  <act:parent type="guid">missing</act:parent>
</gnc:account>
`

const gncFooter = `</gnc:book>
</gnc-v2>
`

func gncTxnXML(date, description string, splits ...string) string {
	return `<gnc:transaction version="2.0.0">
  <trn:id type="guid">` + description + `</trn:id>
  <trn:date-posted>
    <ts:date>` + date + ` 00:00:00 -0500</ts:date>
  </trn:date-posted>
  <trn:date-entered>
    <ts:date>1999-01-01 10:00:00 -0500</ts:date>
  </trn:date-entered>
  <trn:description>` + description + `</trn:description>
  <trn:splits>
` + strings.Join(splits, "") + `  </trn:splits>
</gnc:transaction>
`
}

func gncSplitXML(account, value, memo string) string {
	return `    <trn:split>
      <split:id type="guid">s</split:id>
      <split:memo>` + memo + `</split:memo>
      <split:value>` + value + `</split:value>
      <split:quantity>` + value + `</split:quantity>
      <split:account type="guid">` + account + `</split:account>
    </trn:split>
`
}

func importGnuCash(t *testing.T, body string) ([]string, error) {
	t.Helper()

	transactions, err := NewGnuCashImporter().Import(context.Background(), strings.NewReader(gncHeader+body+gncFooter), march2024)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(transactions))
	for _, txn := range transactions {
		lines = append(lines, strings.Join([]string{
			txn.Date.Format("2006-01-02"),
			txn.Payee,
			txn.Memo,
			txn.FormattedAmount(),
			txn.Withdrawal.FullName(),
			txn.Deposit.FullName(),
		}, "|"))
	}
	return lines, nil
}

func TestGnuCashMasterWithdrawal(t *testing.T) {
	got, err := importGnuCash(t, gncTxnXML("2024-03-08", "Market",
		gncSplitXML("checking", "-10000/100", ""),
		gncSplitXML("groceries", "4000/100", "food"),
		gncSplitXML("household", "6000/100", "soap"),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2024-03-08|Market|food|40.00|Assets:Checking|Expenses:Groceries",
		"2024-03-08|Market|soap|60.00|Assets:Checking|Expenses:Household",
	}, got)
}

func TestGnuCashMasterDeposit(t *testing.T) {
	got, err := importGnuCash(t, gncTxnXML("2024-03-10", "Transfer",
		gncSplitXML("checking", "-2500/100", "out"),
		gncSplitXML("groceries", "-500/100", "refund"),
		gncSplitXML("savings", "3000/100", "in"),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2024-03-10|Transfer|out|25.00|Assets:Checking|Assets:Savings",
		"2024-03-10|Transfer|refund|5.00|Expenses:Groceries|Assets:Savings",
	}, got)
}

func TestGnuCashRejectsMultipleMasters(t *testing.T) {
	got, err := importGnuCash(t,
		gncTxnXML("2024-03-11", "Ambiguous",
			gncSplitXML("checking", "-100/1", ""),
			gncSplitXML("savings", "-100/1", ""),
		)+
			gncTxnXML("2024-03-12", "Fine",
				gncSplitXML("checking", "-1250/100", ""),
				gncSplitXML("groceries", "1250/100", ""),
			),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-03-12|Fine||12.50|Assets:Checking|Expenses:Groceries"}, got)
}

func TestGnuCashSoftSkips(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "out of period",
			body: gncTxnXML("2024-04-01", "April",
				gncSplitXML("checking", "-1/1", ""),
				gncSplitXML("groceries", "1/1", ""),
			),
		},
		{
			name: "split with dropped account",
			body: gncTxnXML("2024-03-02", "Orphaned",
				gncSplitXML("checking", "-1/1", ""),
				gncSplitXML("orphan", "1/1", ""),
			),
		},
		{
			name: "split posted to the root account",
			body: gncTxnXML("2024-03-02", "Rooted",
				gncSplitXML("checking", "-1/1", ""),
				gncSplitXML("root", "1/1", ""),
			),
		},
		{
			name: "zero denominator",
			body: gncTxnXML("2024-03-02", "Broken",
				gncSplitXML("checking", "-1/1", ""),
				gncSplitXML("groceries", "1/0", ""),
			),
		},
		{
			name: "three non-negative legs",
			body: gncTxnXML("2024-03-02", "Opening",
				gncSplitXML("checking", "1/1", ""),
				gncSplitXML("savings", "1/1", ""),
				gncSplitXML("groceries", "0/1", ""),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importGnuCash(t, tt.body)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestGnuCashIgnoresTemplates(t *testing.T) {
	body := `<gnc:template-transactions>
` + gncTxnXML("2024-03-05", "Template",
		gncSplitXML("checking", "-1/1", ""),
		gncSplitXML("groceries", "1/1", ""),
	) + `</gnc:template-transactions>
`
	got, err := importGnuCash(t, body)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGnuCashMalformedXML(t *testing.T) {
	input := gncHeader + `<gnc:transaction><trn:description>oops</gnc:transaction>`

	transactions, err := NewGnuCashImporter().Import(context.Background(), strings.NewReader(input), march2024)
	require.Error(t, err)
	assert.Nil(t, transactions)
	assert.ErrorIs(t, err, common.ErrFatal)
}

func TestParseRational(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{input: "-10000/100", expected: "-100"},
		{input: "1/3", expected: "0.3333333333333333"},
		{input: "42", expected: "42"},
		{input: "5/0", wantErr: true},
		{input: "x/100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseRational(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}
