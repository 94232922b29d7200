package analysis

import (
	"custlens/domain/customer"
	"custlens/domain/stats"
)

func recordColumns() []stats.Column {
	cols := make([]stats.Column, len(customer.Fields))
	for i, f := range customer.Fields {
		if f.IsNumeric() {
			cols[i] = stats.NumberColumn(string(f), f.Label())
		} else {
			cols[i] = stats.TextColumn(string(f), f.Label())
		}
	}
	return cols
}

func recordRow(r customer.Record) []any {
	return []any{r.CustomerID, r.Age, r.Income, r.PurchaseAmount, r.City, r.ProductCategory}
}

// RecordsTable renders records as a table.
func RecordsTable(name, title string, records []customer.Record) *stats.Table {
	t := stats.NewTable(name, title, recordColumns()...)
	for _, r := range records {
		t.AddRow(recordRow(r)...)
	}
	return t
}

// DescriptiveTable renders one row per field.
func DescriptiveTable(rows []stats.DescriptiveStats) *stats.Table {
	t := stats.NewTable(stats.TableDescriptive, "Descriptive Statistics",
		stats.TextColumn("field", "Field"),
		stats.NumberColumn("count", "Count"),
		stats.NumberColumn("mean", "Mean"),
		stats.NumberColumn("median", "Median"),
		stats.NumberColumn("min", "Min"),
		stats.NumberColumn("max", "Max"),
		stats.NumberColumn("std", "Std"),
		stats.NumberColumn("sum", "Sum"),
	)
	for _, d := range rows {
		t.AddRow(d.Field.Label(), d.Count, d.Mean, d.Median, d.Min, d.Max, d.Std, d.Sum)
	}
	return t
}

// GroupByTable renders a group-by result in key order.
func GroupByTable(name, title string, g stats.GroupByResult) *stats.Table {
	t := stats.NewTable(name, title,
		stats.TextColumn(string(g.GroupKey), g.GroupKey.Label()),
		stats.NumberColumn("count", "Count"),
		stats.NumberColumn("mean", "Mean"),
		stats.NumberColumn("median", "Median"),
		stats.NumberColumn("min", "Min"),
		stats.NumberColumn("max", "Max"),
		stats.NumberColumn("sum", "Sum"),
	)
	for _, k := range g.Order {
		s := g.Groups[k]
		t.AddRow(k, s.Count, s.Mean, s.Median, s.Min, s.Max, s.Sum)
	}
	return t
}

// PivotTableTable renders a pivot with its row labels as the first column.
func PivotTableTable(p stats.PivotTable) *stats.Table {
	cols := []stats.Column{stats.TextColumn(p.RowKey, "Age Group")}
	for _, c := range p.Columns {
		cols = append(cols, stats.NumberColumn(c, c))
	}
	t := stats.NewTable(stats.TableAgePivot, "Purchase Trends by Age Group", cols...)
	for i, r := range p.Rows {
		row := make([]any, 0, len(p.Columns)+1)
		row = append(row, r)
		for _, v := range p.Cells[i] {
			row = append(row, v)
		}
		t.AddRow(row...)
	}
	return t
}

// CorrelationTable renders the matrix with field labels on both axes.
func CorrelationTable(m stats.CorrelationMatrix) *stats.Table {
	cols := []stats.Column{stats.TextColumn("field", "")}
	for _, f := range m.Fields {
		cols = append(cols, stats.NumberColumn(string(f), f.Label()))
	}
	t := stats.NewTable(stats.TableCorrelation, "Correlation Analysis", cols...)
	for i, f := range m.Fields {
		row := make([]any, 0, len(m.Fields)+1)
		row = append(row, f.Label())
		for _, v := range m.Values[i] {
			row = append(row, v)
		}
		t.AddRow(row...)
	}
	return t
}

// CountsTable renders a distribution.
func CountsTable(name, title, valueLabel string, counts []stats.ValueCount) *stats.Table {
	t := stats.NewTable(name, title,
		stats.TextColumn("value", valueLabel),
		stats.NumberColumn("count", "Count"),
	)
	for _, c := range counts {
		t.AddRow(c.Value, c.Count)
	}
	return t
}
