package analysis

import (
	"fmt"
	"math"

	"custlens/domain/core"
	"custlens/domain/customer"
	"custlens/domain/stats"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix computes pairwise Pearson coefficients between numeric
// fields (all numeric fields when none are given). The matrix is symmetric.
// A coefficient is undefined when there are fewer than two rows or either
// field has zero variance; the diagonal is 1 otherwise.
func CorrelationMatrix(view customer.View, fields ...customer.Field) (stats.CorrelationMatrix, error) {
	if len(fields) == 0 {
		fields = customer.NumericFields
	}

	columns := make([][]float64, len(fields))
	usable := make([]bool, len(fields))
	for i, f := range fields {
		if !f.IsNumeric() {
			return stats.CorrelationMatrix{}, fmt.Errorf("%w: %s", core.ErrNotNumeric, f)
		}
		values, err := view.Numbers(f)
		if err != nil {
			return stats.CorrelationMatrix{}, err
		}
		columns[i] = values
		usable[i] = len(values) >= 2 && stat.Variance(values, nil) > 0
	}

	values := make([][]stats.Number, len(fields))
	for i := range values {
		values[i] = make([]stats.Number, len(fields))
	}
	for i := range fields {
		for j := i; j < len(fields); j++ {
			c := stats.Undefined()
			switch {
			case !usable[i] || !usable[j]:
			case i == j:
				c = 1
			default:
				r := stat.Correlation(columns[i], columns[j], nil)
				if !math.IsNaN(r) && !math.IsInf(r, 0) {
					c = stats.Number(clamp(r))
				}
			}
			values[i][j] = c
			values[j][i] = c
		}
	}

	out := make([]customer.Field, len(fields))
	copy(out, fields)
	return stats.CorrelationMatrix{Fields: out, Values: values}, nil
}

// clamp trims floating-point overshoot beyond [-1, 1].
func clamp(r float64) float64 {
	return math.Max(-1, math.Min(1, r))
}
