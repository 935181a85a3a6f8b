package dataset

import (
	"fmt"
	"math/rand"
)

/*
Dataset represents a collection of samples sharing the same columns.

Its NumRows and NumColumns methods return its dimensions, ColumnType returns
whether a column holds continuous or categorical values and Samples returns
the samples it contains.
*/
type Dataset interface {
	Samples() []Sample
	Sample(i int) Sample
	NumRows() int
	NumColumns() int
	ColumnType(column int) Type
	Empty() bool
}

/*
Unlabeled is a Dataset of samples without outcomes, such as the samples for
which a prediction is requested.
*/
type Unlabeled struct {
	samples []Sample
	types   []Type
}

/*
Labeled is a Dataset in which every sample has a known outcome (its label),
either categorical (classes) or continuous (regression targets).
*/
type Labeled struct {
	Unlabeled
	labels    []interface{}
	labelType Type
}

/*
NewUnlabeled takes a slice of samples and returns an unlabeled dataset with
them, or an error wrapping ErrInconsistentSamples if the samples do not share
columns and column types. Numeric values are converted to float64.
*/
func NewUnlabeled(samples []Sample) (*Unlabeled, error) {
	normalized, types, err := normalizeSamples(samples)
	if err != nil {
		return nil, err
	}
	return &Unlabeled{normalized, types}, nil
}

/*
NewLabeled takes a slice of samples and a slice of labels of the same length
and returns a labeled dataset with them. Labels must be all numeric
(regression) or all strings (classification).
*/
func NewLabeled(samples []Sample, labels []interface{}) (*Labeled, error) {
	if len(samples) != len(labels) {
		return nil, fmt.Errorf("%w: %d samples but %d labels", ErrInconsistentSamples, len(samples), len(labels))
	}
	u, err := NewUnlabeled(samples)
	if err != nil {
		return nil, err
	}
	normalized := make([]interface{}, len(labels))
	var labelType Type
	for i, l := range labels {
		v, t, err := normalize(l)
		if err != nil {
			return nil, fmt.Errorf("%w: label %d: %v", ErrInconsistentSamples, i, err)
		}
		if i == 0 {
			labelType = t
		} else if t != labelType {
			return nil, fmt.Errorf("%w: label %d is %s, expected %s", ErrInconsistentSamples, i, t, labelType)
		}
		normalized[i] = v
	}
	return &Labeled{*u, normalized, labelType}, nil
}

func normalizeSamples(samples []Sample) ([]Sample, []Type, error) {
	if len(samples) == 0 {
		return nil, nil, nil
	}
	width := len(samples[0])
	types := make([]Type, width)
	result := make([]Sample, len(samples))
	for i, s := range samples {
		if len(s) != width {
			return nil, nil, fmt.Errorf("%w: sample %d has %d columns, expected %d", ErrInconsistentSamples, i, len(s), width)
		}
		ns := make(Sample, width)
		for j, v := range s {
			nv, t, err := normalize(v)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: sample %d column %d: %v", ErrInconsistentSamples, i, j, err)
			}
			if i == 0 {
				types[j] = t
			} else if types[j] != t {
				return nil, nil, fmt.Errorf("%w: sample %d column %d is %s, expected %s", ErrInconsistentSamples, i, j, t, types[j])
			}
			ns[j] = nv
		}
		result[i] = ns
	}
	return result, types, nil
}

// Samples returns the samples in the dataset.
func (u *Unlabeled) Samples() []Sample {
	return u.samples
}

// Sample returns the i-th sample of the dataset.
func (u *Unlabeled) Sample(i int) Sample {
	return u.samples[i]
}

// NumRows returns the number of samples in the dataset.
func (u *Unlabeled) NumRows() int {
	return len(u.samples)
}

// NumColumns returns the number of columns of the samples in the dataset.
func (u *Unlabeled) NumColumns() int {
	return len(u.types)
}

/*
ColumnType returns the type of the values on the given column. It panics if
the column is out of range.
*/
func (u *Unlabeled) ColumnType(column int) Type {
	return u.types[column]
}

// Empty returns whether the dataset has no samples.
func (u *Unlabeled) Empty() bool {
	return len(u.samples) == 0
}

// Labels returns the labels of the samples, in sample order.
func (l *Labeled) Labels() []interface{} {
	return l.labels
}

// Label returns the label for the i-th sample.
func (l *Labeled) Label(i int) interface{} {
	return l.labels[i]
}

// LabelType returns whether the labels are categorical or continuous.
func (l *Labeled) LabelType() Type {
	return l.labelType
}

/*
PossibleOutcomes returns the distinct classes of the labels in the order in
which they first appear in the dataset.
*/
func (l *Labeled) PossibleOutcomes() []string {
	var result []string
	encountered := make(map[string]bool)
	for _, label := range l.labels {
		c := Class(label)
		if !encountered[c] {
			encountered[c] = true
			result = append(result, c)
		}
	}
	return result
}

/*
Append takes another labeled dataset and returns a new one with the samples
of both, the receiver's first. It returns an error if the datasets have
incompatible columns or labels.
*/
func (l *Labeled) Append(other *Labeled) (*Labeled, error) {
	if other.Empty() {
		return l.subset(l.samples, l.labels), nil
	}
	if l.Empty() {
		return other.subset(other.samples, other.labels), nil
	}
	if l.NumColumns() != other.NumColumns() {
		return nil, fmt.Errorf("%w: appending dataset with %d columns to one with %d", ErrInconsistentSamples, other.NumColumns(), l.NumColumns())
	}
	for i, t := range l.types {
		if other.types[i] != t {
			return nil, fmt.Errorf("%w: appending dataset with %s column %d to one with %s", ErrInconsistentSamples, other.types[i], i, t)
		}
	}
	if l.labelType != other.labelType {
		return nil, fmt.Errorf("%w: appending dataset with %s labels to one with %s", ErrInconsistentSamples, other.labelType, l.labelType)
	}
	samples := make([]Sample, 0, len(l.samples)+len(other.samples))
	samples = append(append(samples, l.samples...), other.samples...)
	labels := make([]interface{}, 0, len(l.labels)+len(other.labels))
	labels = append(append(labels, l.labels...), other.labels...)
	return l.subset(samples, labels), nil
}

/*
RandomSubsetWithReplacement takes a number k and a source of randomness and
returns a labeled dataset with exactly k samples drawn with replacement from
the receiver. The returned dataset has its own slices of samples and labels.
An empty receiver yields an empty dataset.
*/
func (l *Labeled) RandomSubsetWithReplacement(k int, r *rand.Rand) *Labeled {
	if l.Empty() || k <= 0 {
		return l.subset(nil, nil)
	}
	samples := make([]Sample, k)
	labels := make([]interface{}, k)
	n := len(l.samples)
	for i := 0; i < k; i++ {
		j := r.Intn(n)
		samples[i] = l.samples[j]
		labels[i] = l.labels[j]
	}
	return l.subset(samples, labels)
}

/*
Partition takes a column and a value and splits the dataset in two: the left
dataset holds the samples whose value on the column is below the given
threshold (continuous columns) or equal to the given category (categorical
columns); the right dataset holds the rest.
*/
func (l *Labeled) Partition(column int, value interface{}) (*Labeled, *Labeled) {
	var leftSamples, rightSamples []Sample
	var leftLabels, rightLabels []interface{}
	for i, s := range l.samples {
		if GoesLeft(s[column], value) {
			leftSamples = append(leftSamples, s)
			leftLabels = append(leftLabels, l.labels[i])
		} else {
			rightSamples = append(rightSamples, s)
			rightLabels = append(rightLabels, l.labels[i])
		}
	}
	return l.subset(leftSamples, leftLabels), l.subset(rightSamples, rightLabels)
}

/*
GoesLeft returns whether a sample value is routed to the left branch of a
split on the given value: categories go left on equality and numbers go left
when strictly below the threshold.
*/
func GoesLeft(v, splitValue interface{}) bool {
	if category, ok := splitValue.(string); ok {
		s, _ := v.(string)
		return s == category
	}
	threshold, _ := splitValue.(float64)
	f, _ := v.(float64)
	return f < threshold
}

func (l *Labeled) subset(samples []Sample, labels []interface{}) *Labeled {
	return &Labeled{Unlabeled{samples, l.types}, labels, l.labelType}
}
