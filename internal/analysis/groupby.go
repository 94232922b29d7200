package analysis

import (
	"fmt"
	"sort"

	"custlens/domain/core"
	"custlens/domain/customer"
	"custlens/domain/stats"
)

// GroupByCategory aggregates a numeric field per value of a categorical
// group key. Only values present in the view produce a group; keys are
// ordered lexicographically.
func GroupByCategory(view customer.View, field, groupKey customer.Field) (stats.GroupByResult, error) {
	if !field.IsNumeric() {
		return stats.GroupByResult{}, fmt.Errorf("%w: %s", core.ErrNotNumeric, field)
	}
	if !groupKey.IsCategorical() {
		return stats.GroupByResult{}, fmt.Errorf("%w: %s", core.ErrNotCategorical, groupKey)
	}

	values, err := view.Numbers(field)
	if err != nil {
		return stats.GroupByResult{}, err
	}
	keys, err := view.Labels(groupKey)
	if err != nil {
		return stats.GroupByResult{}, err
	}

	buckets := make(map[string][]float64)
	for i, k := range keys {
		buckets[k] = append(buckets[k], values[i])
	}

	result := stats.GroupByResult{
		Field:    field,
		GroupKey: groupKey,
		Groups:   make(map[string]stats.GroupStats, len(buckets)),
		Order:    make([]string, 0, len(buckets)),
	}
	for k, vals := range buckets {
		s := summarize(vals)
		result.Groups[k] = stats.GroupStats{
			Key:    k,
			Count:  s.count,
			Mean:   s.mean,
			Median: s.median,
			Min:    s.min,
			Max:    s.max,
			Sum:    s.sum,
		}
		result.Order = append(result.Order, k)
	}
	sort.Strings(result.Order)
	return result, nil
}
