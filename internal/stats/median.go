// Package stats computes null-tolerant medians and ranges over housing entries.
package stats

import "slices"

// Median returns the median of values, or nil for an empty slice.
// The input is not reordered.
func Median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	var m float64
	if len(sorted)%2 == 1 {
		m = sorted[mid]
	} else {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}

// Min returns the smallest value, or nil for an empty slice.
func Min(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := slices.Min(values)
	return &m
}

// Max returns the largest value, or nil for an empty slice.
func Max(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := slices.Max(values)
	return &m
}

// Present collects the non-nil values picked from each item.
func Present[T any](items []T, pick func(T) *float64) []float64 {
	out := make([]float64, 0, len(items))
	for _, it := range items {
		if v := pick(it); v != nil {
			out = append(out, *v)
		}
	}
	return out
}
