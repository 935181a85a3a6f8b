/*
Package csv reads datasets from CSV streams.

The first row of the stream must hold the names of the columns. Columns
whose values all parse as numbers become continuous columns, the rest are
categorical. Missing values are not supported.
*/
package csv

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pbanos/arbor/dataset"
)

type options struct {
	categoricalLabels bool
}

// Option configures how a CSV stream is read.
type Option func(*options)

// CategoricalLabels makes the label column categorical even if all its
// values are numbers, so that numeric class identifiers can be learned by
// classification trees.
func CategoricalLabels() Option {
	return func(o *options) {
		o.categoricalLabels = true
	}
}

/*
ReadLabeled takes an io.Reader for a CSV stream and the name of the column
holding the labels and returns a labeled dataset with the rows of the stream
and the names of its columns, label excluded, in stream order.
*/
func ReadLabeled(r io.Reader, label string, opts ...Option) (*dataset.Labeled, []string, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	var loadOpts []dataframe.LoadOption
	if o.categoricalLabels {
		loadOpts = append(loadOpts, dataframe.WithTypes(map[string]series.Type{label: series.String}))
	}
	df := dataframe.ReadCSV(r, loadOpts...)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %v", df.Err)
	}
	var names []string
	labelFound := false
	for _, n := range df.Names() {
		if n == label {
			labelFound = true
		} else {
			names = append(names, n)
		}
	}
	if !labelFound {
		return nil, nil, fmt.Errorf("%w: no column %s", dataset.ErrLabelsAreMissing, label)
	}
	samples, err := samplesFrom(df, names)
	if err != nil {
		return nil, nil, err
	}
	labels, err := values(df.Col(label))
	if err != nil {
		return nil, nil, fmt.Errorf("column %s: %v", label, err)
	}
	d, err := dataset.NewLabeled(samples, labels)
	if err != nil {
		return nil, nil, err
	}
	return d, names, nil
}

/*
ReadUnlabeled takes an io.Reader for a CSV stream and returns an unlabeled
dataset with the rows of the stream and the names of its columns.
*/
func ReadUnlabeled(r io.Reader) (*dataset.Unlabeled, []string, error) {
	df := dataframe.ReadCSV(r)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %v", df.Err)
	}
	names := df.Names()
	samples, err := samplesFrom(df, names)
	if err != nil {
		return nil, nil, err
	}
	d, err := dataset.NewUnlabeled(samples)
	if err != nil {
		return nil, nil, err
	}
	return d, names, nil
}

/*
ReadLabeledFromFilePath takes a filepath string, the name of the label column
and options, opens the file to which the filepath points and uses ReadLabeled
to return the dataset in it. An empty filepath reads from STDIN.
*/
func ReadLabeledFromFilePath(filepath, label string, opts ...Option) (*dataset.Labeled, []string, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening dataset: %v", err)
		}
		defer f.Close()
	}
	d, names, err := ReadLabeled(f, label, opts...)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %w", filepath, err)
	}
	return d, names, err
}

/*
ReadUnlabeledFromFilePath takes a filepath string, opens the file to which
it points and uses ReadUnlabeled to return the dataset in it. An empty
filepath reads from STDIN.
*/
func ReadUnlabeledFromFilePath(filepath string) (*dataset.Unlabeled, []string, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening dataset: %v", err)
		}
		defer f.Close()
	}
	d, names, err := ReadUnlabeled(f)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %w", filepath, err)
	}
	return d, names, err
}

func samplesFrom(df dataframe.DataFrame, names []string) ([]dataset.Sample, error) {
	samples := make([]dataset.Sample, df.Nrow())
	for i := range samples {
		samples[i] = make(dataset.Sample, len(names))
	}
	for j, n := range names {
		vs, err := values(df.Col(n))
		if err != nil {
			return nil, fmt.Errorf("column %s: %v", n, err)
		}
		for i, v := range vs {
			samples[i][j] = v
		}
	}
	return samples, nil
}

// values returns the elements of a series as float64 for numeric series and
// as strings otherwise.
func values(s series.Series) ([]interface{}, error) {
	result := make([]interface{}, s.Len())
	for i := range result {
		e := s.Elem(i)
		if e.IsNA() {
			return nil, fmt.Errorf("missing value on row %d", i+1)
		}
		switch s.Type() {
		case series.Int, series.Float:
			result[i] = e.Float()
		default:
			result[i] = e.String()
		}
	}
	return result, nil
}
