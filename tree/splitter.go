package tree

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/internal/stats"
)

/*
Splitter is the strategy a CART uses to grow: FindBestSplit takes a labeled
dataset, the columns it may split on and a source of randomness and returns
the Comparison that most reduces impurity, with its partitions attached.
Terminate takes a labeled dataset and returns the leaf summarizing it.

When no column separates the samples, FindBestSplit returns a Comparison
with no purity increase that leaves one of its partitions empty.
*/
type Splitter interface {
	FindBestSplit(d *dataset.Labeled, columns []int, r *rand.Rand) *Comparison
	Terminate(d *dataset.Labeled) Leaf
}

/*
Gini is the Splitter of classification trees. It evaluates every threshold
between sorted values of continuous columns and every category of
categorical columns, minimizing the weighted Gini impurity of the children.
*/
type Gini struct{}

/*
ExtraGini is the Splitter of extremely randomized classification trees. It
evaluates a single random threshold or category per column and keeps the one
with the lowest weighted Gini impurity.
*/
type ExtraGini struct{}

/*
Variance is the Splitter of regression trees. It evaluates the same
candidates as Gini but minimizes the weighted variance of the outcomes.
*/
type Variance struct{}

// split is a candidate column and value with the impurity of its children.
type split struct {
	column   int
	value    interface{}
	impurity float64
	found    bool
}

func (s split) better(o split) bool {
	return o.found && (!s.found || o.impurity < s.impurity)
}

func (Gini) FindBestSplit(d *dataset.Labeled, columns []int, r *rand.Rand) *Comparison {
	total := classCounts(d)
	impurity := stats.Gini(d.NumRows(), total)
	var best split
	for _, column := range columns {
		var candidate split
		if d.ColumnType(column) == dataset.Categorical {
			candidate = categoricalGini(d, column, total)
		} else {
			candidate = continuousGini(d, column, total)
		}
		if best.better(candidate) {
			best = candidate
		}
	}
	return comparisonFor(d, columns, best, impurity)
}

func (Gini) Terminate(d *dataset.Labeled) Leaf {
	return newBestFromSet(d)
}

func (ExtraGini) FindBestSplit(d *dataset.Labeled, columns []int, r *rand.Rand) *Comparison {
	total := classCounts(d)
	impurity := stats.Gini(d.NumRows(), total)
	var best split
	for _, column := range columns {
		value, ok := randomValue(d, column, r)
		if !ok {
			continue
		}
		left := make(map[string]int)
		var nLeft int
		for i, s := range d.Samples() {
			if dataset.GoesLeft(s[column], value) {
				left[dataset.Class(d.Label(i))]++
				nLeft++
			}
		}
		candidate := split{column, value, giniOfSplit(d.NumRows(), nLeft, left, total), true}
		if best.better(candidate) {
			best = candidate
		}
	}
	return comparisonFor(d, columns, best, impurity)
}

func (ExtraGini) Terminate(d *dataset.Labeled) Leaf {
	return newBestFromSet(d)
}

func (Variance) FindBestSplit(d *dataset.Labeled, columns []int, r *rand.Rand) *Comparison {
	outcomes := continuousLabels(d)
	_, impurity := stats.MeanVariance(outcomes)
	var best split
	for _, column := range columns {
		var candidate split
		if d.ColumnType(column) == dataset.Categorical {
			candidate = categoricalVariance(d, column, outcomes)
		} else {
			candidate = continuousVariance(d, column, outcomes)
		}
		if best.better(candidate) {
			best = candidate
		}
	}
	return comparisonFor(d, columns, best, impurity)
}

func (Variance) Terminate(d *dataset.Labeled) Leaf {
	return newAverageFromSet(d)
}

// comparisonFor partitions d according to the best split found or, when
// none was found, according to the first value of the first column.
func comparisonFor(d *dataset.Labeled, columns []int, best split, impurity float64) *Comparison {
	if !best.found {
		column := 0
		if len(columns) > 0 {
			column = columns[0]
		}
		best = split{column: column, value: d.Sample(0)[column], impurity: impurity}
	}
	left, right := d.Partition(best.column, best.value)
	return NewComparison(best.column, best.value, math.Max(0.0, impurity-best.impurity), left, right)
}

func giniOfSplit(n, nLeft int, left, total map[string]int) float64 {
	nRight := n - nLeft
	right := make(map[string]int, len(total))
	for c, count := range total {
		right[c] = count - left[c]
	}
	return float64(nLeft)/float64(n)*stats.Gini(nLeft, left) +
		float64(nRight)/float64(n)*stats.Gini(nRight, right)
}

// sortedByColumn returns the row indices of d ordered by their value on
// the given continuous column.
func sortedByColumn(d *dataset.Labeled, column int) ([]int, []float64) {
	n := d.NumRows()
	index := make([]int, n)
	values := make([]float64, n)
	for i := range index {
		index[i] = i
		values[i], _ = d.Sample(i)[column].(float64)
	}
	sort.SliceStable(index, func(a, b int) bool {
		return values[index[a]] < values[index[b]]
	})
	sorted := make([]float64, n)
	for i, j := range index {
		sorted[i] = values[j]
	}
	return index, sorted
}

func continuousGini(d *dataset.Labeled, column int, total map[string]int) split {
	n := d.NumRows()
	index, values := sortedByColumn(d, column)
	left := make(map[string]int, len(total))
	right := make(map[string]int, len(total))
	for c, count := range total {
		right[c] = count
	}
	best := split{column: column}
	for i := 1; i < n; i++ {
		c := dataset.Class(d.Label(index[i-1]))
		left[c]++
		right[c]--
		if values[i] <= values[i-1] {
			continue
		}
		impurity := float64(i)/float64(n)*stats.Gini(i, left) +
			float64(n-i)/float64(n)*stats.Gini(n-i, right)
		if !best.found || impurity < best.impurity {
			best = split{column, values[i], impurity, true}
		}
	}
	return best
}

func categoricalGini(d *dataset.Labeled, column int, total map[string]int) split {
	categories, rows := groupByCategory(d, column)
	best := split{column: column}
	if len(categories) < 2 {
		return best
	}
	for _, category := range categories {
		left := make(map[string]int)
		for _, i := range rows[category] {
			left[dataset.Class(d.Label(i))]++
		}
		impurity := giniOfSplit(d.NumRows(), len(rows[category]), left, total)
		if !best.found || impurity < best.impurity {
			best = split{column, category, impurity, true}
		}
	}
	return best
}

func continuousVariance(d *dataset.Labeled, column int, outcomes []float64) split {
	n := d.NumRows()
	index, values := sortedByColumn(d, column)
	var sumRight, sqRight float64
	for _, y := range outcomes {
		sumRight += y
		sqRight += y * y
	}
	var sumLeft, sqLeft float64
	best := split{column: column}
	for i := 1; i < n; i++ {
		y := outcomes[index[i-1]]
		sumLeft += y
		sqLeft += y * y
		sumRight -= y
		sqRight -= y * y
		if values[i] <= values[i-1] {
			continue
		}
		impurity := (weightedVariance(i, sumLeft, sqLeft) + weightedVariance(n-i, sumRight, sqRight)) / float64(n)
		if !best.found || impurity < best.impurity {
			best = split{column, values[i], impurity, true}
		}
	}
	return best
}

func categoricalVariance(d *dataset.Labeled, column int, outcomes []float64) split {
	n := d.NumRows()
	categories, rows := groupByCategory(d, column)
	best := split{column: column}
	if len(categories) < 2 {
		return best
	}
	var sum, sq float64
	for _, y := range outcomes {
		sum += y
		sq += y * y
	}
	for _, category := range categories {
		var sumLeft, sqLeft float64
		for _, i := range rows[category] {
			sumLeft += outcomes[i]
			sqLeft += outcomes[i] * outcomes[i]
		}
		nLeft := len(rows[category])
		impurity := (weightedVariance(nLeft, sumLeft, sqLeft) + weightedVariance(n-nLeft, sum-sumLeft, sq-sqLeft)) / float64(n)
		if !best.found || impurity < best.impurity {
			best = split{column, category, impurity, true}
		}
	}
	return best
}

// weightedVariance returns n times the variance of n values with the given
// sum and sum of squares.
func weightedVariance(n int, sum, sq float64) float64 {
	if n == 0 {
		return 0.0
	}
	return math.Max(0.0, sq-sum*sum/float64(n))
}

// groupByCategory returns the categories of a column in first-seen order
// along with the rows holding each of them.
func groupByCategory(d *dataset.Labeled, column int) ([]string, map[string][]int) {
	var categories []string
	rows := make(map[string][]int)
	for i, s := range d.Samples() {
		category, _ := s[column].(string)
		if _, ok := rows[category]; !ok {
			categories = append(categories, category)
		}
		rows[category] = append(rows[category], i)
	}
	return categories, rows
}

// randomValue draws a split value for a column: a uniform threshold within
// the range of a continuous column or one of the categories of a
// categorical column. It returns false when the column is constant.
func randomValue(d *dataset.Labeled, column int, r *rand.Rand) (interface{}, bool) {
	if d.ColumnType(column) == dataset.Categorical {
		categories, _ := groupByCategory(d, column)
		if len(categories) < 2 {
			return nil, false
		}
		return categories[r.Intn(len(categories))], true
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range d.Samples() {
		v, _ := s[column].(float64)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		return nil, false
	}
	return lo + r.Float64()*(hi-lo), true
}
