package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// paramColumns returns the union of parameter names across all rows, sorted,
// so the table has one identifying column per swept parameter.
func paramColumns(rows []Row) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for name := range row.Params {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenerateConsoleReport formats the sweep comparison table for terminal
// output. Failed rows are listed with their error kind, never dropped.
func GenerateConsoleReport(report *Report) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Sweep Report: strategy %s, sorted by %s desc\n", report.Strategy, report.SortBy))
	builder.WriteString(strings.Repeat("=", 72) + "\n")

	params := paramColumns(report.Rows)
	header := append(append([]string{}, params...),
		"final_equity", "total_return_pct", "max_drawdown_pct", "trade_count", "win_rate", "sharpe_ratio", "error")
	builder.WriteString(strings.Join(header, "\t") + "\n")

	for _, row := range report.Rows {
		cells := make([]string, 0, len(header))
		for _, p := range params {
			cells = append(cells, formatParam(row.Params[p]))
		}
		if row.Failed() {
			cells = append(cells, "-", "-", "-", "-", "-", "-", row.Err)
		} else {
			m := row.Result.Metrics
			cells = append(cells,
				fmt.Sprintf("%.2f", m.FinalEquity),
				fmt.Sprintf("%.2f", m.TotalReturnPct),
				fmt.Sprintf("%.2f", m.MaxDrawdownPct),
				fmt.Sprintf("%d", m.TradeCount),
				fmt.Sprintf("%.2f", m.WinRate),
				fmt.Sprintf("%.2f", m.SharpeRatio),
				"",
			)
		}
		builder.WriteString(strings.Join(cells, "\t") + "\n")
	}
	return builder.String()
}

// GenerateCSVExport writes the sweep table to a CSV file.
func GenerateCSVExport(report *Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	params := paramColumns(report.Rows)
	var builder strings.Builder
	header := append(append([]string{}, params...),
		"final_equity", "total_return_pct", "max_drawdown_pct", "trade_count", "win_rate", "sharpe_ratio", "error")
	builder.WriteString(strings.Join(header, ",") + "\n")

	for _, row := range report.Rows {
		cells := make([]string, 0, len(header))
		for _, p := range params {
			cells = append(cells, formatParam(row.Params[p]))
		}
		if row.Failed() {
			cells = append(cells, "", "", "", "", "", "", csvEscape(row.Err))
		} else {
			m := row.Result.Metrics
			cells = append(cells,
				fmt.Sprintf("%.4f", m.FinalEquity),
				fmt.Sprintf("%.4f", m.TotalReturnPct),
				fmt.Sprintf("%.4f", m.MaxDrawdownPct),
				fmt.Sprintf("%d", m.TradeCount),
				fmt.Sprintf("%.4f", m.WinRate),
				fmt.Sprintf("%.4f", m.SharpeRatio),
				"",
			)
		}
		builder.WriteString(strings.Join(cells, ",") + "\n")
	}

	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}

func formatParam(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
