// Package ofx converts OFX/QFX bank and credit card statements into
// canonical double-entry transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// Top-level accounts used for statement accounts and their counter-entries.
const (
	BankParent      = "Assets"
	CreditParent    = "Liabilities"
	ImbalanceName   = "Imbalance"
	amountPrecision = 2
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of a bare opening tag
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX statement and returns the transactions inside period.
// The statement account is the withdrawal for debits and the deposit for credits;
// the other side is the Imbalance account until a rule assigns it.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, period model.Period) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			account := model.NewAccount(string(stmt.BankAcctFrom.AcctID), model.NewAccount(BankParent, nil))
			transactions = append(transactions, p.processTransactions(ctx, stmt.BankTranList, account, period)...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			account := model.NewAccount(string(stmt.CCAcctFrom.AcctID), model.NewAccount(CreditParent, nil))
			transactions = append(transactions, p.processTransactions(ctx, stmt.BankTranList, account, period)...)
		}
	}

	slog.InfoContext(ctx, "Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (p *Parser) processTransactions(ctx context.Context, list *ofxgo.TransactionList, account *model.Account, period model.Period) []model.Transaction {
	if list == nil {
		return nil
	}

	var transactions []model.Transaction
	for _, ofxTx := range list.Transactions {
		if !period.Contains(ofxTx.DtPosted.Time) {
			continue
		}
		tx, err := p.convertTransaction(ofxTx, account)
		if err != nil {
			slog.WarnContext(ctx, "Skipping OFX transaction",
				"account", account.FullName(),
				"fitid", string(ofxTx.FiTID),
				"error", err)
			continue
		}
		transactions = append(transactions, tx)
	}

	return transactions
}

// convertTransaction converts an OFX transaction to our model.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, account *model.Account) (model.Transaction, error) {
	// OFX uses negative amounts for debits
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(amountPrecision))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	imbalance := model.NewAccount(ImbalanceName, nil)
	withdrawal, deposit := imbalance, account
	if amount.IsNegative() {
		withdrawal, deposit = account, imbalance
	}

	memo := strings.TrimSpace(string(ofxTx.Memo))
	if ofxTx.CheckNum != "" {
		memo = strings.TrimSpace(fmt.Sprintf("Check %s %s", ofxTx.CheckNum, memo))
	}

	return model.NewTransaction(ofxTx.DtPosted.Time, p.extractMerchantName(ofxTx), memo, amount, withdrawal, deposit), nil
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is usually cleaner than NAME
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// Sometimes MEMO has better merchant info
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " left over from the card network
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
