package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical textual form of a transaction date.
const DateLayout = "2006-01-02"

// Transaction is the canonical, format-independent double-entry record produced
// by every importer. Amount is never negative; direction is carried by which
// account is the withdrawal and which is the deposit.
//
// Transactions are passed by value and never modified after import.
type Transaction struct {
	Date       time.Time
	Withdrawal *Account
	Deposit    *Account
	Payee      string
	Memo       string
	Amount     decimal.Decimal
}

// NewTransaction builds a transaction, normalizing the amount to its absolute value.
func NewTransaction(date time.Time, payee, memo string, amount decimal.Decimal, withdrawal, deposit *Account) Transaction {
	return Transaction{
		Date:       date,
		Payee:      payee,
		Memo:       memo,
		Amount:     amount.Abs(),
		Withdrawal: withdrawal,
		Deposit:    deposit,
	}
}

// FormattedAmount returns the amount with two decimal places.
func (t Transaction) FormattedAmount() string {
	return t.Amount.StringFixed(2)
}

// GenerateHash creates a stable identity used for duplicate detection.
func (t Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		t.Date.Format(DateLayout),
		t.FormattedAmount(),
		t.Payee,
		t.Memo,
		t.Withdrawal.FullName(),
		t.Deposit.FullName())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Equal reports whether two transactions carry the same values.
func (t Transaction) Equal(other Transaction) bool {
	return t.Date.Equal(other.Date) &&
		t.Payee == other.Payee &&
		t.Memo == other.Memo &&
		t.Amount.Equal(other.Amount) &&
		t.Withdrawal.Equal(other.Withdrawal) &&
		t.Deposit.Equal(other.Deposit)
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s,%s,%s (%s)", t.Date.Format(DateLayout), t.FormattedAmount(), t.Payee, t.Memo)
}
