// Package stats computes summary statistics over telemetry samples.
package stats

import (
	"errors"
	"fmt"
	"math"

	"telemetry-pipeline/internal/domain"
)

// ErrInsufficientData is returned when fewer than two values are
// provided. Sample standard deviation divides by n-1 and is undefined
// for a single value; the mean of an empty sequence is undefined too.
var ErrInsufficientData = errors.New("insufficient data: need at least 2 values")

// Compute returns the arithmetic mean and sample standard deviation
// (n-1 denominator) of data. Summation is fixed left-to-right, so
// identical input sequences produce identical output.
func Compute(data []float64) (domain.Statistics, error) {
	n := len(data)
	if n < 2 {
		return domain.Statistics{}, fmt.Errorf("%w, got %d", ErrInsufficientData, n)
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(n)

	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	stddev := math.Sqrt(sumSq / float64(n-1))

	return domain.Statistics{Mean: mean, StdDev: stddev}, nil
}
