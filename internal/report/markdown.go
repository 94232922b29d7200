// Package report renders a dashboard as a markdown document.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"custlens/domain/customer"
	"custlens/domain/stats"
)

// Title heads every report.
const Title = "Customer Insights Dashboard"

// Markdown renders the dashboard: criteria summary, key metrics and one
// section per table. Numbers are rounded to two decimals; undefined values
// print as N/A.
func Markdown(d *stats.Dashboard) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", Title)
	fmt.Fprintf(&b, "_%s_\n\n", d.Summary)
	fmt.Fprintf(&b, "Rows selected: %d of %d", d.RowCount, d.Dataset.NumRows)
	if d.Dataset.Source != "" && d.Dataset.Source != customer.SourceSynthetic {
		fmt.Fprintf(&b, " (source %s)", d.Dataset.Source)
	} else {
		fmt.Fprintf(&b, " (seed %d)", d.Dataset.Seed)
	}
	b.WriteString("\n\n")

	b.WriteString("## Key Metrics\n\n")
	b.WriteString("| Metric | Value |\n| --- | ---: |\n")
	m := d.Metrics
	for _, row := range []struct {
		label string
		value any
	}{
		{"Average Age", m.AverageAge},
		{"Average Income", m.AverageIncome},
		{"Average Purchase", m.AveragePurchase},
		{"Total Purchases", m.TotalPurchases},
		{"Max Purchase", m.MaxPurchase},
		{"Most Common City", m.MostCommonCity},
	} {
		fmt.Fprintf(&b, "| %s | %s |\n", row.label, Format(row.value))
	}
	b.WriteString("\n")

	for _, t := range d.Tables {
		writeTable(&b, t)
	}
	return b.String()
}

// Table renders a single table section.
func Table(t *stats.Table) string {
	var b strings.Builder
	writeTable(&b, t)
	return b.String()
}

func writeTable(b *strings.Builder, t *stats.Table) {
	fmt.Fprintf(b, "## %s\n\n", t.Title)
	if t.Len() == 0 {
		b.WriteString("_No rows match the current filters._\n\n")
		return
	}

	b.WriteString("|")
	for _, c := range t.Columns {
		fmt.Fprintf(b, " %s |", escape(c.Label))
	}
	b.WriteString("\n|")
	for _, c := range t.Columns {
		if c.Type == stats.ColumnNumber {
			b.WriteString(" ---: |")
		} else {
			b.WriteString(" --- |")
		}
	}
	b.WriteString("\n")

	for _, row := range t.Rows {
		b.WriteString("|")
		for _, v := range row {
			fmt.Fprintf(b, " %s |", Format(v))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// Format renders a cell for display.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return stats.NoData
	case string:
		if x == "" {
			return stats.NoData
		}
		return escape(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		return Format(stats.Number(x))
	case stats.Number:
		if !x.IsDefined() {
			return stats.NoData
		}
		return strconv.FormatFloat(x.Round(2).Float(), 'f', 2, 64)
	default:
		return escape(fmt.Sprint(x))
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
