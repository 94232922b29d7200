package stats

import (
	"custlens/domain/customer"
)

// NoData is the placeholder reported for a categorical statistic over no rows.
const NoData = "N/A"

// DescriptiveStats summarises one numeric field.
// INVARIANTS:
// - Count == 0 implies every other value is undefined
// - Std is the sample standard deviation and is undefined when Count < 2
type DescriptiveStats struct {
	Field  customer.Field `json:"field"`
	Count  int            `json:"count"`
	Mean   Number         `json:"mean"`
	Median Number         `json:"median"`
	Min    Number         `json:"min"`
	Max    Number         `json:"max"`
	Std    Number         `json:"std"`
	Sum    Number         `json:"sum"`
}

// EmptyDescriptiveStats returns the "no data" result for a field.
func EmptyDescriptiveStats(field customer.Field) DescriptiveStats {
	return DescriptiveStats{
		Field:  field,
		Mean:   Undefined(),
		Median: Undefined(),
		Min:    Undefined(),
		Max:    Undefined(),
		Std:    Undefined(),
		Sum:    Undefined(),
	}
}

// GroupStats summarises one group of a group-by.
type GroupStats struct {
	Key    string `json:"key"`
	Count  int    `json:"count"`
	Mean   Number `json:"mean"`
	Median Number `json:"median"`
	Min    Number `json:"min"`
	Max    Number `json:"max"`
	Sum    Number `json:"sum"`
}

// GroupByResult maps each present group value to its stats.
// Order lists the keys lexicographically; groups with no members never appear.
type GroupByResult struct {
	Field    customer.Field        `json:"field"`
	GroupKey customer.Field        `json:"group_key"`
	Groups   map[string]GroupStats `json:"groups"`
	Order    []string              `json:"order"`
}

// PivotTable cross-tabulates a mean value by two dimensions.
// Cells[i][j] is undefined when no record falls in (Rows[i], Columns[j]).
type PivotTable struct {
	RowKey     string     `json:"row_key"`
	ColumnKey  string     `json:"column_key"`
	Value      string     `json:"value"`
	Rows       []string   `json:"rows"`
	Columns    []string   `json:"columns"`
	Cells      [][]Number `json:"cells"`
	Unbucketed int        `json:"unbucketed"`
}

// Cell returns the value at (row, column) labels.
func (p PivotTable) Cell(row, column string) Number {
	for i, r := range p.Rows {
		if r != row {
			continue
		}
		for j, c := range p.Columns {
			if c == column {
				return p.Cells[i][j]
			}
		}
	}
	return Undefined()
}

// CorrelationMatrix holds pairwise Pearson coefficients; Values is symmetric.
type CorrelationMatrix struct {
	Fields []customer.Field `json:"fields"`
	Values [][]Number       `json:"values"`
}

// At returns the coefficient for a pair of fields.
func (m CorrelationMatrix) At(a, b customer.Field) Number {
	i, j := -1, -1
	for k, f := range m.Fields {
		if f == a {
			i = k
		}
		if f == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return Undefined()
	}
	return m.Values[i][j]
}

// ValueCount is one bar of a distribution.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Point is one scatter-plot sample.
type Point struct {
	X Number `json:"x"`
	Y Number `json:"y"`
}

// Metrics are the headline figures of the dashboard.
type Metrics struct {
	AverageAge      Number `json:"average_age"`
	AverageIncome   Number `json:"average_income"`
	AveragePurchase Number `json:"average_purchase"`
	TotalPurchases  Number `json:"total_purchases"`
	MaxPurchase     Number `json:"max_purchase"`
	MostCommonCity  string `json:"most_common_city"`
}

// CityExploration summarises one city of the filtered rows.
type CityExploration struct {
	City            string       `json:"city"`
	Customers       int          `json:"customers"`
	AverageAge      Number       `json:"average_age"`
	AveragePurchase Number       `json:"average_purchase"`
	AverageIncome   Number       `json:"average_income"`
	Categories      []ValueCount `json:"categories"`
}

// CategoryExploration summarises one product category of the filtered rows.
type CategoryExploration struct {
	Category        string       `json:"category"`
	Purchases       int          `json:"purchases"`
	AveragePurchase Number       `json:"average_purchase"`
	MaxPurchase     Number       `json:"max_purchase"`
	Cities          []ValueCount `json:"cities"`
}
