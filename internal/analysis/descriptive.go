// Package analysis computes the dashboard aggregates over a filtered view.
// Every function is read-only: inputs are never mutated and every result is
// freshly allocated. Aggregates over an empty view report undefined values
// rather than failing.
package analysis

import (
	"math"

	"custlens/domain/customer"
	"custlens/domain/stats"

	mfstats "github.com/montanaflynn/stats"
)

// summary holds the per-sample statistics shared by descriptive and group stats.
type summary struct {
	count                           int
	mean, median, min, max, std, sum stats.Number
}

func summarize(values []float64) summary {
	s := summary{
		count:  len(values),
		mean:   stats.Undefined(),
		median: stats.Undefined(),
		min:    stats.Undefined(),
		max:    stats.Undefined(),
		std:    stats.Undefined(),
		sum:    stats.Undefined(),
	}
	if len(values) == 0 {
		return s
	}

	data := mfstats.Float64Data(values)
	s.mean = number(data.Mean())
	s.median = number(data.Median())
	s.min = number(data.Min())
	s.max = number(data.Max())
	s.sum = number(data.Sum())
	if len(values) >= 2 {
		s.std = number(data.StandardDeviationSample())
	}
	return s
}

// number converts a montanaflynn result; any error becomes undefined.
func number(v float64, err error) stats.Number {
	if err != nil || math.IsNaN(v) {
		return stats.Undefined()
	}
	return stats.Number(v)
}

// DescriptiveStats computes mean, median, min, max, sample std and sum of a
// numeric field. An empty view yields all-undefined values and Count 0.
func DescriptiveStats(view customer.View, field customer.Field) (stats.DescriptiveStats, error) {
	values, err := view.Numbers(field)
	if err != nil {
		return stats.DescriptiveStats{}, err
	}
	if len(values) == 0 {
		return stats.EmptyDescriptiveStats(field), nil
	}

	s := summarize(values)
	return stats.DescriptiveStats{
		Field:  field,
		Count:  s.count,
		Mean:   s.mean,
		Median: s.median,
		Min:    s.min,
		Max:    s.max,
		Std:    s.std,
		Sum:    s.sum,
	}, nil
}

// DescribeAll computes DescriptiveStats for each field in order.
func DescribeAll(view customer.View, fields ...customer.Field) ([]stats.DescriptiveStats, error) {
	out := make([]stats.DescriptiveStats, 0, len(fields))
	for _, f := range fields {
		d, err := DescriptiveStats(view, f)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// mean returns the mean of a numeric field, undefined on an empty view.
func mean(view customer.View, field customer.Field) stats.Number {
	values, err := view.Numbers(field)
	if err != nil || len(values) == 0 {
		return stats.Undefined()
	}
	return number(mfstats.Mean(values))
}
