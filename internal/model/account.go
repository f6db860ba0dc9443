package model

import "strings"

// AccountSeparator joins account names into a fully-qualified path.
const AccountSeparator = ":"

// Account is a named ledger account with an optional parent.
// Accounts are value objects; two accounts are equal when their full paths match.
type Account struct {
	Parent *Account
	Name   string
}

// NewAccount creates an account under the given parent (nil for a top-level account).
func NewAccount(name string, parent *Account) *Account {
	return &Account{Name: name, Parent: parent}
}

// ParseAccount rebuilds an account hierarchy from a colon-joined full name.
func ParseAccount(fullName string) *Account {
	var acct *Account
	for _, part := range strings.Split(fullName, AccountSeparator) {
		acct = NewAccount(part, acct)
	}
	return acct
}

// Path returns the account names from the root down to this account.
func (a *Account) Path() []string {
	if a == nil {
		return nil
	}
	return append(a.Parent.Path(), a.Name)
}

// FullName returns the colon-joined path, e.g. "Expenses:Auto:Fuel".
func (a *Account) FullName() string {
	if a == nil {
		return ""
	}
	return strings.Join(a.Path(), AccountSeparator)
}

// Equal reports whether both accounts have the same fully-qualified path.
func (a *Account) Equal(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.FullName() == other.FullName()
}

func (a *Account) String() string {
	return a.FullName()
}
