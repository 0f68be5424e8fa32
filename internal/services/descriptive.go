package services

import (
	"math"
	"sort"
)

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return floatPtr(sum / float64(len(values)))
}

func median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return floatPtr(sorted[mid])
	}
	return floatPtr((sorted[mid-1] + sorted[mid]) / 2)
}

// sampleStdDev uses the n-1 denominator and is undefined below two values.
func sampleStdDev(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	m := *mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return floatPtr(math.Sqrt(sum / float64(len(values)-1)))
}

// modeInt returns the most frequent value, the smallest one on ties.
func modeInt(values []int) *int {
	if len(values) == 0 {
		return nil
	}
	counts := make(map[int]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := 0, 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return intPtr(best)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

func nullFloat(valid bool, v float64) *float64 {
	if !valid {
		return nil
	}
	return floatPtr(v)
}
