package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/estimate-flow/internal/assignment"
	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ImportSummary describes the outcome of importing one file.
type ImportSummary struct {
	Path     string
	Format   string
	Parsed   int
	Inserted int
}

// RenderImportSummary renders the per-file import results in a box.
func RenderImportSummary(summaries []ImportSummary) string {
	var b strings.Builder
	totalParsed, totalInserted := 0, 0
	for _, s := range summaries {
		totalParsed += s.Parsed
		totalInserted += s.Inserted
		fmt.Fprintf(&b, "%s %s\n", EmphasisStyle.Render(s.Path), MutedStyle.Render("("+s.Format+")"))
		fmt.Fprintf(&b, "  %d parsed, %d new\n", s.Parsed, s.Inserted)
	}
	b.WriteString(FormatSuccess(fmt.Sprintf("%d transactions imported, %d already known", totalInserted, totalParsed-totalInserted)))

	return RenderBox(FlowIcon+" Import Complete", b.String())
}

// RenderRules renders the rule list with its priority positions.
func RenderRules(rules []model.Rule) string {
	if len(rules) == 0 {
		return MutedStyle.Render("No assignment rules configured.")
	}

	var b strings.Builder
	for i, rule := range rules {
		fmt.Fprintf(&b, "%3d. %s %s\n", i+1, EmphasisStyle.Render(string(rule.Estimate)), MutedStyle.Render(shortID(rule.ID)))
		if len(rule.Conditions) == 0 {
			b.WriteString(WarningStyle.Render("       (no conditions, never matches)") + "\n")
			continue
		}
		for _, c := range rule.Conditions {
			fmt.Fprintf(&b, "       %s\n", c)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderAssignments renders classified transactions grouped by estimate, with
// the actual total per estimate and the unassigned remainder.
func RenderAssignments(a *assignment.Assignments, verbose bool) string {
	var sections []string

	for _, estimate := range a.Estimates() {
		txns := a.ForEstimate(estimate)
		header := lipgloss.JoinHorizontal(lipgloss.Top,
			EstimateStyle.Render(string(estimate)),
			AmountStyle.Render(a.Actual(estimate).StringFixed(2)),
			MutedStyle.Render(fmt.Sprintf("  %d transactions", len(txns))),
		)
		sections = append(sections, header)
		if verbose {
			sections = append(sections, renderTransactions(txns))
		}
	}

	unassigned := a.Unassigned()
	if len(unassigned) > 0 {
		total := decimal.Zero
		for _, txn := range unassigned {
			total = total.Add(txn.Amount)
		}
		sections = append(sections, FormatWarning(fmt.Sprintf("%d unassigned transactions totaling %s", len(unassigned), total.StringFixed(2))))
		if verbose {
			sections = append(sections, renderTransactions(unassigned))
		}
	} else if a.Len() > 0 {
		sections = append(sections, FormatSuccess("All transactions assigned"))
	}

	if a.Len() == 0 {
		sections = append(sections, MutedStyle.Render("No transactions in period."))
	}

	return RenderBox(ChartIcon+" Assignments", strings.Join(sections, "\n"))
}

func renderTransactions(txns []model.Transaction) string {
	lines := make([]string, len(txns))
	for i, txn := range txns {
		lines[i] = fmt.Sprintf("    %s  %-28s %s  %s",
			txn.Date.Format(model.DateLayout),
			truncate(txn.Payee, 28),
			AmountStyle.Render(txn.FormattedAmount()),
			AccountStyle.Render(txn.Withdrawal.FullName()+" → "+txn.Deposit.FullName()),
		)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
