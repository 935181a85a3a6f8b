package tree

import (
	"fmt"
	"strings"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/internal/stats"
)

/*
Best is the leaf of a classification tree. It predicts the most probable
class among the training samples that reached it.
*/
type Best struct {
	class         string
	probabilities map[string]float64
	impurity      float64
	size          int
}

/*
Average is the leaf of a regression tree. It predicts the mean outcome of
the training samples that reached it.
*/
type Average struct {
	mean     float64
	variance float64
	size     int
}

/*
NewBest takes the predicted class, the probability of every class, the Gini
impurity and the number of training samples of the leaf and returns it.
*/
func NewBest(class string, probabilities map[string]float64, impurity float64, size int) *Best {
	return &Best{class, probabilities, impurity, size}
}

// NewAverage takes the mean and variance of the outcomes of a leaf and its
// number of training samples and returns it.
func NewAverage(mean, variance float64, size int) *Average {
	return &Average{mean, variance, size}
}

// newBestFromSet builds the leaf summarizing the labels of the given dataset.
// The predicted class is the most frequent one, the first seen on ties.
func newBestFromSet(d *dataset.Labeled) *Best {
	n := d.NumRows()
	counts := classCounts(d)
	probabilities := make(map[string]float64, len(counts))
	for c, count := range counts {
		probabilities[c] = float64(count) / float64(n)
	}
	class := stats.ArgMax(d.PossibleOutcomes(), probabilities)
	return NewBest(class, probabilities, stats.Gini(n, counts), n)
}

func newAverageFromSet(d *dataset.Labeled) *Average {
	mean, variance := stats.MeanVariance(continuousLabels(d))
	return NewAverage(mean, variance, d.NumRows())
}

// Outcome returns the predicted class.
func (b *Best) Outcome() interface{} {
	return b.class
}

// Class returns the predicted class.
func (b *Best) Class() string {
	return b.class
}

/*
ProbabilityOf takes a class and returns its probability according to the
leaf.
*/
func (b *Best) ProbabilityOf(class string) float64 {
	return b.probabilities[class]
}

/*
Probabilities returns a map of class to float64 containing the probability
of each class seen on the leaf.
*/
func (b *Best) Probabilities() map[string]float64 {
	return b.probabilities
}

// Impurity returns the Gini impurity of the training samples on the leaf.
func (b *Best) Impurity() float64 {
	return b.impurity
}

// Size returns the number of training samples on the leaf.
func (b *Best) Size() int {
	return b.size
}

func (b *Best) Height() int {
	return 1
}

func (b *Best) Balance() int {
	return 0
}

func (b *Best) Children() []BinaryNode {
	return nil
}

func (b *Best) String() string {
	return fmt.Sprintf("%s %s n=%d", b.class, strings.Replace(fmt.Sprintf("%v", b.probabilities), "map", "", 1), b.size)
}

func (b *Best) binaryNode() {}

// Outcome returns the predicted value.
func (a *Average) Outcome() interface{} {
	return a.mean
}

// Mean returns the predicted value.
func (a *Average) Mean() float64 {
	return a.mean
}

// Variance returns the variance of the outcomes on the leaf.
func (a *Average) Variance() float64 {
	return a.variance
}

// Size returns the number of training samples on the leaf.
func (a *Average) Size() int {
	return a.size
}

func (a *Average) Height() int {
	return 1
}

func (a *Average) Balance() int {
	return 0
}

func (a *Average) Children() []BinaryNode {
	return nil
}

func (a *Average) String() string {
	return fmt.Sprintf("%g (variance=%g) n=%d", a.mean, a.variance, a.size)
}

func (a *Average) binaryNode() {}

func classCounts(d *dataset.Labeled) map[string]int {
	counts := make(map[string]int)
	for _, label := range d.Labels() {
		counts[dataset.Class(label)]++
	}
	return counts
}

func continuousLabels(d *dataset.Labeled) []float64 {
	values := make([]float64, d.NumRows())
	for i, label := range d.Labels() {
		values[i], _ = label.(float64)
	}
	return values
}
