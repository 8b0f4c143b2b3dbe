package reporting

import (
	"fmt"
	"strings"

	"backtest-lab/internal/domain"
	"backtest-lab/internal/metrics"
)

// RenderLedgerCSV renders the closed-trade ledger as a CSV string with the
// engine-facing column names.
func RenderLedgerCSV(trades []*domain.ClosedTrade) string {
	var sb strings.Builder

	sb.WriteString(strings.Join(metrics.LedgerColumns, ","))
	sb.WriteString("\n")
	for _, t := range trades {
		writeRow(&sb, metrics.LedgerRow(t))
	}

	return sb.String()
}

// RenderEnrichedCSV renders the enriched ledger as a CSV string, one row per
// trade with the window metrics appended to the ledger columns.
func RenderEnrichedCSV(trades []*domain.EnrichedTrade) string {
	var sb strings.Builder

	sb.WriteString(strings.Join(metrics.EnrichedColumns, ","))
	sb.WriteString("\n")
	for _, t := range trades {
		writeRow(&sb, metrics.EnrichedRow(t))
	}

	return sb.String()
}

// RenderSummaryCSV renders the portfolio summary as a two-line CSV: a header
// of statistic names and a single value row.
func RenderSummaryCSV(s *domain.PortfolioSummary) string {
	fields := metrics.SummaryFields(s)

	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(f.Name)
	}
	sb.WriteString("\n")
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(formatCell(f.Value))
	}
	sb.WriteString("\n")

	return sb.String()
}

func writeRow(sb *strings.Builder, row []any) {
	for i, v := range row {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(formatCell(v))
	}
	sb.WriteString("\n")
}

// formatCell renders one value. Floats keep six decimals; NaN ratios render
// as "NaN" and are understood by downstream tooling.
func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return fmt.Sprintf("%d", x)
	case int64:
		return fmt.Sprintf("%d", x)
	case float64:
		return fmt.Sprintf("%.6f", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
