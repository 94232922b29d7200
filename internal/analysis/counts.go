package analysis

import (
	"sort"
	"strconv"

	"custlens/domain/customer"
	"custlens/domain/stats"
)

// ValueCounts counts each value of a categorical field, most frequent first.
// Ties keep the order in which values first appear.
func ValueCounts(view customer.View, field customer.Field) ([]stats.ValueCount, error) {
	labels, err := view.Labels(field)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	counts := make([]stats.ValueCount, 0)
	for _, l := range labels {
		i, ok := index[l]
		if !ok {
			i = len(counts)
			index[l] = i
			counts = append(counts, stats.ValueCount{Value: l})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(a, b int) bool { return counts[a].Count > counts[b].Count })
	return counts, nil
}

// AgeDistribution counts rows per age, ascending by age.
func AgeDistribution(view customer.View) []stats.ValueCount {
	counts := make(map[int]int)
	for i := 0; i < view.Len(); i++ {
		counts[view.At(i).Age]++
	}

	ages := make([]int, 0, len(counts))
	for a := range counts {
		ages = append(ages, a)
	}
	sort.Ints(ages)

	out := make([]stats.ValueCount, len(ages))
	for i, a := range ages {
		out[i] = stats.ValueCount{Value: strconv.Itoa(a), Count: counts[a]}
	}
	return out
}

// MostCommon returns the most frequent value of a categorical field, or
// stats.NoData for an empty view.
func MostCommon(view customer.View, field customer.Field) (string, error) {
	counts, err := ValueCounts(view, field)
	if err != nil {
		return "", err
	}
	if len(counts) == 0 {
		return stats.NoData, nil
	}
	return counts[0].Value, nil
}

// ScatterSeries pairs two numeric fields row by row.
func ScatterSeries(view customer.View, x, y customer.Field) ([]stats.Point, error) {
	xs, err := view.Numbers(x)
	if err != nil {
		return nil, err
	}
	ys, err := view.Numbers(y)
	if err != nil {
		return nil, err
	}
	out := make([]stats.Point, len(xs))
	for i := range xs {
		out[i] = stats.Point{X: stats.Number(xs[i]), Y: stats.Number(ys[i])}
	}
	return out, nil
}
