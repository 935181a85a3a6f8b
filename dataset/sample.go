package dataset

import (
	"fmt"
)

// Type identifies the kind of values held by a column or by the labels
// of a dataset.
type Type int

const (
	// Categorical values are strings compared by equality.
	Categorical Type = iota
	// Continuous values are float64 numbers compared by threshold.
	Continuous
)

func (t Type) String() string {
	switch t {
	case Categorical:
		return "categorical"
	case Continuous:
		return "continuous"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

/*
Sample represents an item to process or from which to learn how to process
them. It holds one value per column: a float64 for continuous columns or a
string for categorical ones.
*/
type Sample []interface{}

// Error is the type of the errors returned by the package.
type Error string

func (e Error) Error() string {
	return string(e)
}

/*
ErrLabelsAreMissing is returned when a labeled dataset is required but an
unlabeled one (or nothing at all) was provided.
*/
const ErrLabelsAreMissing = Error("labels are missing from the dataset")

// ErrEmptyDataset is returned when an operation requires at least one sample.
const ErrEmptyDataset = Error("dataset has no samples")

/*
ErrInconsistentSamples is returned when samples do not share the same number
of columns or a column mixes continuous and categorical values.
*/
const ErrInconsistentSamples = Error("inconsistent samples")

/*
Class takes a label and returns the string used to identify it as a class:
the label itself for strings and its default format otherwise.
*/
func Class(label interface{}) string {
	if s, ok := label.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", label)
}

// normalize converts numeric values to float64 and reports the type of v.
func normalize(v interface{}) (interface{}, Type, error) {
	switch v := v.(type) {
	case string:
		return v, Categorical, nil
	case float64:
		return v, Continuous, nil
	case float32:
		return float64(v), Continuous, nil
	case int:
		return float64(v), Continuous, nil
	case int32:
		return float64(v), Continuous, nil
	case int64:
		return float64(v), Continuous, nil
	case bool:
		return fmt.Sprintf("%t", v), Categorical, nil
	}
	return nil, Categorical, fmt.Errorf("unsupported value %v of type %T", v, v)
}
