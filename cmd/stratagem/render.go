package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/stratagem/pkg/baseline"
	"github.com/dd0wney/stratagem/pkg/compare"
	"github.com/dd0wney/stratagem/pkg/game"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	bestStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

func renderReport(name string, r *compare.Report) string {
	var sb strings.Builder

	title := fmt.Sprintf("Stratagem: %s (%d nodes, budget %g, alpha %g, beta %g)",
		name, r.Nodes, r.Budget, r.Params.Alpha, r.Params.Beta)
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("catalog: " + r.Catalog.String()))
	sb.WriteString("\n")
	sb.WriteString(renderComparison(r))
	sb.WriteString("\n")

	eq := r.Equilibrium()
	sb.WriteString(titleStyle.Render("Equilibrium allocation"))
	sb.WriteString("\n")
	sb.WriteString(renderBreakdown(eq, r.Catalog))
	sb.WriteString("\n")
	sb.WriteString(eq.Summary())
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("report %s in %v", r.ID, r.Duration)))
	return sb.String()
}

func renderComparison(r *compare.Report) string {
	ranked := r.Ranking()
	rows := make([][]string, 0, len(ranked))
	for _, e := range ranked {
		gap, _ := r.Gap(e.Strategy)
		rows = append(rows, []string{
			e.Strategy,
			e.Solution.Target,
			fmt.Sprintf("%+.4f", e.Solution.DefenderUtility),
			fmt.Sprintf("%+.4f", e.Solution.AttackerUtility),
			fmt.Sprintf("%.3f", e.Solution.Spend),
			fmt.Sprintf("%.4f", gap),
		})
	}

	return newTable("STRATEGY", "TARGET", "DEFENDER EU", "ATTACKER EU", "SPEND", "GAP").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == 0:
				return bestStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func renderBreakdown(sol *game.Solution, catalog game.Catalog) string {
	headers := []string{"NODE", "VALUE", "ENTRY"}
	for _, r := range catalog {
		headers = append(headers, strings.ToUpper(r.Kind.String()))
	}
	headers = append(headers, "P(DETECT)", "DEFENDER EU", "ATTACKER EU")

	target := -1
	rows := make([][]string, 0, len(sol.Breakdown))
	for i, b := range sol.Breakdown {
		id := b.NodeID
		if id == sol.Target {
			id += " *"
			target = i
		}
		entry := ""
		if b.EntryPoint {
			entry = "yes"
		}
		row := []string{id, fmt.Sprintf("%g", b.Value), entry}
		for _, r := range catalog {
			row = append(row, formatCoverage(b.Coverage[r.Kind]))
		}
		row = append(row,
			fmt.Sprintf("%.3f", b.Detection),
			fmt.Sprintf("%+.4f", b.DefenderExpected),
			fmt.Sprintf("%+.4f", b.AttackerExpected))
		rows = append(rows, row)
	}

	return newTable(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == target:
				return bestStyle
			default:
				return cellStyle
			}
		}).
		String()
}

// renderSweep shows defender utility per strategy at each budget.
func renderSweep(reports []*compare.Report) string {
	headers := []string{"BUDGET", "TARGET"}
	names := []string{compare.EquilibriumName}
	for _, s := range baseline.Strategies() {
		names = append(names, s.Name)
	}
	for _, n := range names {
		headers = append(headers, strings.ToUpper(n))
	}

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		row := []string{fmt.Sprintf("%g", r.Budget), r.Equilibrium().Target}
		for _, n := range names {
			cell := "-"
			if e, ok := r.Entry(n); ok {
				cell = fmt.Sprintf("%+.4f", e.Solution.DefenderUtility)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	return newTable(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2:
				return bestStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func formatCoverage(x float64) string {
	if x == 0 {
		return "."
	}
	return fmt.Sprintf("%.3f", x)
}
