package analysis

import (
	"fmt"
	"sort"

	"custlens/domain/core"
	"custlens/domain/customer"
	"custlens/domain/stats"
)

// Buckets partitions ages by edges. Bucket i covers [Edges[i], Edges[i+1]),
// except the last, which also includes its right edge.
type Buckets struct {
	Edges  []int
	Labels []string
}

// DefaultAgeBuckets returns the dashboard's age groups.
func DefaultAgeBuckets() Buckets {
	return Buckets{
		Edges:  []int{18, 25, 35, 45, 55, 70},
		Labels: []string{"18-25", "26-35", "36-45", "46-55", "56-70"},
	}
}

// Validate requires at least one bucket, strictly increasing edges and one
// label per bucket.
func (b Buckets) Validate() error {
	if len(b.Edges) < 2 {
		return fmt.Errorf("%w: need at least 2 edges, got %d", core.ErrInvalidBuckets, len(b.Edges))
	}
	for i := 1; i < len(b.Edges); i++ {
		if b.Edges[i] <= b.Edges[i-1] {
			return fmt.Errorf("%w: edges must be strictly increasing (%d <= %d)", core.ErrInvalidBuckets, b.Edges[i], b.Edges[i-1])
		}
	}
	if len(b.Labels) != len(b.Edges)-1 {
		return fmt.Errorf("%w: %d labels for %d buckets", core.ErrInvalidBuckets, len(b.Labels), len(b.Edges)-1)
	}
	return nil
}

// Assign returns the bucket index for age, or false when age lies outside
// [Edges[0], Edges[last]].
func (b Buckets) Assign(age int) (int, bool) {
	last := len(b.Edges) - 1
	if age < b.Edges[0] || age > b.Edges[last] {
		return 0, false
	}
	if age == b.Edges[last] {
		return last - 1, true
	}
	// First edge strictly greater than age closes the bucket.
	i := sort.SearchInts(b.Edges, age+1)
	return i - 1, true
}

// AgeBucketPivot tabulates mean purchase_amount per (age bucket, product
// category). Rows are every bucket in edge order, columns the categories
// present in the view, sorted. Combinations without records are undefined.
func AgeBucketPivot(view customer.View, buckets Buckets) (stats.PivotTable, error) {
	if err := buckets.Validate(); err != nil {
		return stats.PivotTable{}, err
	}

	type cell struct {
		sum   float64
		count int
	}
	sums := make([]map[string]*cell, len(buckets.Labels))
	for i := range sums {
		sums[i] = make(map[string]*cell)
	}
	present := make(map[string]bool)
	unbucketed := 0

	for i := 0; i < view.Len(); i++ {
		r := view.At(i)
		b, ok := buckets.Assign(r.Age)
		if !ok {
			unbucketed++
			continue
		}
		c := sums[b][r.ProductCategory]
		if c == nil {
			c = &cell{}
			sums[b][r.ProductCategory] = c
		}
		c.sum += r.PurchaseAmount
		c.count++
		present[r.ProductCategory] = true
	}

	columns := make([]string, 0, len(present))
	for k := range present {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	rows := make([]string, len(buckets.Labels))
	copy(rows, buckets.Labels)

	cells := make([][]stats.Number, len(rows))
	for i := range rows {
		cells[i] = make([]stats.Number, len(columns))
		for j, col := range columns {
			if c := sums[i][col]; c != nil && c.count > 0 {
				cells[i][j] = stats.Number(c.sum / float64(c.count))
			} else {
				cells[i][j] = stats.Undefined()
			}
		}
	}

	return stats.PivotTable{
		RowKey:     "age_group",
		ColumnKey:  string(customer.FieldProductCategory),
		Value:      "mean " + string(customer.FieldPurchaseAmount),
		Rows:       rows,
		Columns:    columns,
		Cells:      cells,
		Unbucketed: unbucketed,
	}, nil
}

// NewBuckets builds buckets over edges labelled the way DefaultAgeBuckets
// labels them: the first bucket "a-b", every later one "(a+1)-b".
func NewBuckets(edges ...int) Buckets {
	b := Buckets{Edges: append([]int(nil), edges...)}
	for i := 0; i+1 < len(edges); i++ {
		lo := edges[i]
		if i > 0 {
			lo++
		}
		b.Labels = append(b.Labels, fmt.Sprintf("%d-%d", lo, edges[i+1]))
	}
	return b
}
