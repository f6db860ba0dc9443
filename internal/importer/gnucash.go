package importer

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/estimate-flow/internal/common"
	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/shopspring/decimal"
)

const (
	gncDateLayout      = "2006-01-02"
	gncRootAccountType = "ROOT"
)

// gncState is the element the parser is currently accumulating.
type gncState int

const (
	gncIdle gncState = iota
	gncInAccount
	gncInTransaction
	gncInSplit
)

type gncAccount struct {
	id       string
	name     string
	kind     string
	parentID string
}

type gncSplit struct {
	account *model.Account
	memo    string
	value   decimal.Decimal
}

type gncTransaction struct {
	date        time.Time
	description string
	splits      []gncSplit
	dated       bool
	abandoned   bool
}

type gncPendingSplit struct {
	accountID string
	memo      string
	value     string
}

// GnuCashImporter reads uncompressed GnuCash XML books. Compressed books are
// inflated before they reach it.
type GnuCashImporter struct{}

// NewGnuCashImporter creates a GnuCash XML importer.
func NewGnuCashImporter() *GnuCashImporter {
	return &GnuCashImporter{}
}

// Import streams the book, registering accounts and converting every in-period
// transaction into one canonical transaction per non-master split.
func (g *GnuCashImporter) Import(ctx context.Context, r io.Reader, period model.Period) ([]model.Transaction, error) {
	p := &gncParser{
		ctx:      ctx,
		period:   period,
		accounts: make(map[string]*model.Account),
		roots:    make(map[string]bool),
	}

	if err := p.run(xml.NewDecoder(r)); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Parsed GnuCash file",
		"accounts", len(p.accounts),
		"total_transactions", len(p.out),
		"skipped_transactions", p.skipped)

	return p.out, nil
}

// gncParser tracks the element stack and the pending record for each state.
// Fields are only read from direct children of the record element, so nested
// elements sharing a local name (cmdty:id inside act:commodity) are ignored.
type gncParser struct {
	ctx      context.Context
	period   model.Period
	accounts map[string]*model.Account
	roots    map[string]bool

	state gncState
	stack []string
	text  strings.Builder

	// depth of the element that opened the current state
	recordDepth int
	splitDepth  int

	account gncAccount
	txn     gncTransaction
	split   gncPendingSplit

	out     []model.Transaction
	skipped int
}

func (p *gncParser) run(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			if len(p.stack) > 0 {
				return common.NewFatalError("Unable to parse GnuCash file", io.ErrUnexpectedEOF)
			}
			return nil
		}
		if err != nil {
			return common.NewFatalError("Unable to parse GnuCash file", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if p.state == gncIdle && t.Name.Local == "template-transactions" {
				if err := d.Skip(); err != nil {
					return common.NewFatalError("Unable to parse GnuCash file", err)
				}
				continue
			}
			p.start(t.Name.Local)
		case xml.CharData:
			p.text.Write(t)
		case xml.EndElement:
			p.end(t.Name.Local)
		}
	}
}

func (p *gncParser) start(name string) {
	p.stack = append(p.stack, name)
	p.text.Reset()

	switch p.state {
	case gncIdle:
		switch name {
		case "account":
			p.state = gncInAccount
			p.recordDepth = len(p.stack)
			p.account = gncAccount{}
		case "transaction":
			p.state = gncInTransaction
			p.recordDepth = len(p.stack)
			p.txn = gncTransaction{}
		}
	case gncInTransaction:
		if name == "split" && p.parent() == "splits" {
			p.state = gncInSplit
			p.splitDepth = len(p.stack)
			p.split = gncPendingSplit{}
		}
	}
}

func (p *gncParser) end(name string) {
	text := strings.TrimSpace(p.text.String())
	depth := len(p.stack)
	parent := p.parent()

	switch p.state {
	case gncInAccount:
		switch {
		case depth == p.recordDepth:
			p.finishAccount()
			p.state = gncIdle
		case depth == p.recordDepth+1:
			switch name {
			case "id":
				p.account.id = text
			case "name":
				p.account.name = text
			case "type":
				p.account.kind = text
			case "parent":
				p.account.parentID = text
			}
		}

	case gncInTransaction:
		switch {
		case depth == p.recordDepth:
			p.finishTransaction()
			p.state = gncIdle
		case depth == p.recordDepth+1 && name == "description":
			p.txn.description = text
		case depth == p.recordDepth+2 && name == "date" && parent == "date-posted":
			p.postDate(text)
		}

	case gncInSplit:
		switch {
		case depth == p.splitDepth:
			p.finishSplit()
			p.state = gncInTransaction
		case depth == p.splitDepth+1:
			switch name {
			case "value":
				p.split.value = text
			case "memo":
				p.split.memo = text
			case "account":
				p.split.accountID = text
			}
		}
	}

	p.stack = p.stack[:depth-1]
	p.text.Reset()
}

func (p *gncParser) parent() string {
	if len(p.stack) < 2 {
		return ""
	}
	return p.stack[len(p.stack)-2]
}

// finishAccount registers the account. The root account only anchors the
// tree and is left out of full names.
func (p *gncParser) finishAccount() {
	a := p.account
	if a.id == "" {
		slog.WarnContext(p.ctx, "Skipping GnuCash account without id", "name", a.name)
		return
	}

	if strings.EqualFold(a.kind, gncRootAccountType) {
		p.roots[a.id] = true
		return
	}

	var parent *model.Account
	if a.parentID != "" && !p.roots[a.parentID] {
		known, ok := p.accounts[a.parentID]
		if !ok {
			slog.WarnContext(p.ctx, "Skipping GnuCash account with unknown parent",
				"account", a.name, "parent_id", a.parentID)
			return
		}
		parent = known
	}

	p.accounts[a.id] = model.NewAccount(a.name, parent)
}

func (p *gncParser) postDate(text string) {
	if len(text) > len(gncDateLayout) {
		text = text[:len(gncDateLayout)]
	}
	date, err := time.Parse(gncDateLayout, text)
	if err != nil {
		slog.WarnContext(p.ctx, "Error parsing GnuCash posted date", "value", text, "error", err)
		p.txn.abandoned = true
		return
	}

	p.txn.date = date
	p.txn.dated = true
	if !p.period.Contains(date) {
		p.txn.abandoned = true
	}
}

func (p *gncParser) finishSplit() {
	if p.txn.abandoned {
		return
	}

	s := p.split
	account, ok := p.accounts[s.accountID]
	if !ok {
		slog.WarnContext(p.ctx, "Skipping GnuCash split with unknown account",
			"description", p.txn.description, "account_id", s.accountID)
		return
	}

	value, err := parseRational(s.value)
	if err != nil {
		slog.WarnContext(p.ctx, "Skipping GnuCash split with invalid value",
			"description", p.txn.description, "value", s.value, "error", err)
		return
	}

	p.txn.splits = append(p.txn.splits, gncSplit{account: account, memo: s.memo, value: value})
}

func (p *gncParser) finishTransaction() {
	txn := p.txn
	if txn.abandoned {
		return
	}
	if !txn.dated {
		slog.WarnContext(p.ctx, "Skipping GnuCash transaction without posted date", "description", txn.description)
		p.skipped++
		return
	}

	master, masterIsWithdrawal, ok := resolveMaster(txn.splits)
	if !ok {
		slog.WarnContext(p.ctx, "Skipping unsupported multi-leg GnuCash transaction",
			"description", txn.description,
			"date", txn.date.Format(model.DateLayout),
			"splits", len(txn.splits))
		p.skipped++
		return
	}

	for i, s := range txn.splits {
		if i == master {
			continue
		}
		withdrawal, deposit := txn.splits[master].account, s.account
		if !masterIsWithdrawal {
			withdrawal, deposit = deposit, withdrawal
		}
		p.out = append(p.out, model.NewTransaction(txn.date, txn.description, s.memo, s.value, withdrawal, deposit))
	}
}

// resolveMaster picks the single leg every other leg balances against: the
// only negative split, else the only non-negative split. Any other shape is
// an N-to-M split and is rejected.
func resolveMaster(splits []gncSplit) (index int, isWithdrawal bool, ok bool) {
	if i, n := findSingle(splits, decimal.Decimal.IsNegative); n == 1 {
		return i, true, true
	}
	nonNegative := func(d decimal.Decimal) bool { return !d.IsNegative() }
	if i, n := findSingle(splits, nonNegative); n == 1 {
		return i, false, true
	}
	return -1, false, false
}

func findSingle(splits []gncSplit, match func(decimal.Decimal) bool) (index, count int) {
	index = -1
	for i, s := range splits {
		if match(s.value) {
			if count == 0 {
				index = i
			}
			count++
		}
	}
	return index, count
}

// parseRational parses GnuCash's "numerator/denominator" amounts.
func parseRational(value string) (decimal.Decimal, error) {
	num, den, found := strings.Cut(strings.TrimSpace(value), "/")

	n, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return n, nil
	}

	d, err := decimal.NewFromString(den)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsZero() {
		return decimal.Zero, errors.New("zero denominator")
	}
	return n.Div(d), nil
}
