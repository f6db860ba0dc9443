package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMint = MintHeader + `
"3/04/2024","  Shell  ","SHELL OIL 57444","38.12","debit","Gas & Fuel","Checking","","  weekly fill  "
"3/09/2024","Acme Corp","ACME PAYROLL","2500.00","credit","Paycheck","Checking","work",""
"2/27/2024","Netflix","NETFLIX.COM","15.49","debit","Entertainment","Visa","",""
`

func TestMintImporter(t *testing.T) {
	transactions, err := NewMintImporter().Import(context.Background(), strings.NewReader(sampleMint), march2024)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	fuel := transactions[0]
	assert.Equal(t, "Shell", fuel.Payee)
	assert.Equal(t, "weekly fill", fuel.Memo)
	assert.Equal(t, "38.12", fuel.FormattedAmount())
	assert.Equal(t, "Checking", fuel.Withdrawal.FullName())
	assert.Equal(t, "Gas & Fuel", fuel.Deposit.FullName())

	pay := transactions[1]
	assert.Equal(t, "Acme Corp", pay.Payee)
	assert.Empty(t, pay.Memo)
	assert.Equal(t, "Paycheck", pay.Withdrawal.FullName())
	assert.Equal(t, "Checking", pay.Deposit.FullName())
}

func TestMintImporterFieldCount(t *testing.T) {
	input := MintHeader + "\n" + `"3/04/2024","Shell","SHELL","38.12","debit","Gas","Checking",""` + "\n"

	transactions, err := NewMintImporter().Import(context.Background(), strings.NewReader(input), march2024)
	require.Error(t, err)
	assert.Nil(t, transactions)
	assert.ErrorIs(t, err, common.ErrMalformedRecord)
}

func TestMintImporterBlankLine(t *testing.T) {
	input := MintHeader + "\n\n" + `"3/04/2024","Shell","SHELL","38.12","debit","Gas","Checking","",""` + "\n"

	_, err := NewMintImporter().Import(context.Background(), strings.NewReader(input), march2024)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMalformedRecord)

	var importErr *common.ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, 2, importErr.Line)
}

func TestSplitMintRecord(t *testing.T) {
	fields := splitMintRecord(`"1/2/2024","a, b","","c"`)
	require.Len(t, fields, 4)
	assert.Equal(t, "a, b", fields[1])
	assert.Equal(t, " ", fields[2])
}

func TestIsMintHeader(t *testing.T) {
	assert.True(t, isMintHeader(MintHeader))
	assert.True(t, isMintHeader(strings.ToLower(MintHeader)))
	assert.False(t, isMintHeader("Date,Description,Amount"))
}
