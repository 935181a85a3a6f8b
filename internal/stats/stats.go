// Package stats holds the numeric helpers shared by trees and forests.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Epsilon absorbs floating point noise in comparisons and divisions.
const Epsilon = 1e-8

// Gini returns the Gini impurity of a node with n samples and the given
// per-class counts.
func Gini(n int, counts map[string]int) float64 {
	if n == 0 {
		return 0.0
	}
	g := 0.0
	for _, c := range counts {
		if c > 0 {
			p := float64(c) / float64(n)
			g += p * p
		}
	}
	return 1.0 - g
}

// MeanVariance returns the mean and population variance of values.
func MeanVariance(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0.0, 0.0
	}
	return stat.PopMeanVariance(values, nil)
}

/*
ArgMax returns the class in classes with the highest value in dist. Ties are
resolved in favour of the class that comes first in classes.
*/
func ArgMax(classes []string, dist map[string]float64) string {
	var best string
	bestValue := math.Inf(-1)
	for _, c := range classes {
		if v := dist[c]; v > bestValue {
			best = c
			bestValue = v
		}
	}
	return best
}

// Round returns x rounded half away from zero as an int.
func Round(x float64) int {
	return int(math.Round(x))
}
