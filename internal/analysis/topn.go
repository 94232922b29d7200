package analysis

import (
	"sort"

	"custlens/domain/customer"
)

// TopN returns the n records with the largest value of field, descending.
// Ties keep their original order. n <= 0 or an empty view yields no records.
func TopN(view customer.View, field customer.Field, n int) ([]customer.Record, error) {
	values, err := view.Numbers(field)
	if err != nil {
		return nil, err
	}
	if n <= 0 || len(values) == 0 {
		return []customer.Record{}, nil
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})

	if n > len(order) {
		n = len(order)
	}
	out := make([]customer.Record, n)
	for i := 0; i < n; i++ {
		out[i] = view.At(order[i])
	}
	return out, nil
}
