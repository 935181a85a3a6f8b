/*
Package sqldataset loads labeled datasets from tables of SQL databases and
stores them on them. Access to each database engine is provided by an
Adapter, see the sqlite3adapter and pgadapter packages.
*/
package sqldataset

import (
	"context"
	"fmt"

	"github.com/pbanos/arbor/dataset"
)

/*
Adapter is an interface providing the methods needed to read and write
datasets on a database backend.

ColumnName validates a column name and returns its quoted form for the
backend. CreateSampleTable creates a table with the given columns.
AddSamples inserts rows of values on a table and returns the number of
rows inserted. IterateOnSamples calls lambda with the index and values of
each row of a table, until it returns false or an error. ListColumns returns
the names of the columns of a table in order.
*/
type Adapter interface {
	ColumnName(name string) (string, error)
	CreateSampleTable(ctx context.Context, table string, columns []Column) error
	AddSamples(ctx context.Context, table string, columns []string, rows [][]interface{}) (int, error)
	IterateOnSamples(ctx context.Context, table string, columns []string, lambda func(int, []interface{}) (bool, error)) error
	ListColumns(ctx context.Context, table string) ([]string, error)
	Close() error
}

// Column describes a column of a sample table.
type Column struct {
	Name string
	Type dataset.Type
}

/*
Read takes a context, an Adapter, a table name and the name of the column
holding the labels and returns a labeled dataset with the rows of the table
and the names of its columns. Every other column of the table becomes a
column of the samples, in table order. NULL values are not supported.
*/
func Read(ctx context.Context, a Adapter, table, label string) (*dataset.Labeled, []string, error) {
	columns, err := a.ListColumns(ctx, table)
	if err != nil {
		return nil, nil, fmt.Errorf("listing columns of table %s: %v", table, err)
	}
	labelIndex := -1
	var names []string
	for i, c := range columns {
		if c == label && labelIndex < 0 {
			labelIndex = i
		} else {
			names = append(names, c)
		}
	}
	if labelIndex < 0 {
		return nil, nil, fmt.Errorf("%w: table %s has no column %s", dataset.ErrLabelsAreMissing, table, label)
	}
	var samples []dataset.Sample
	var labels []interface{}
	err = a.IterateOnSamples(ctx, table, columns, func(j int, values []interface{}) (bool, error) {
		sample := make(dataset.Sample, 0, len(values)-1)
		for i, v := range values {
			v, err := value(v)
			if err != nil {
				return false, fmt.Errorf("row %d column %s: %v", j, columns[i], err)
			}
			if i == labelIndex {
				labels = append(labels, v)
			} else {
				sample = append(sample, v)
			}
		}
		samples = append(samples, sample)
		return true, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("reading samples from table %s: %w", table, err)
	}
	d, err := dataset.NewLabeled(samples, labels)
	if err != nil {
		return nil, nil, err
	}
	return d, names, nil
}

/*
Write takes a context, an Adapter, a table name, the names of the columns of
a labeled dataset, the name of its label column and the dataset, creates a
table for it and stores its samples on it. It returns the number of samples
stored and an error if not all of them could be stored.
*/
func Write(ctx context.Context, a Adapter, table string, names []string, label string, d *dataset.Labeled) (int, error) {
	if d.Empty() {
		return 0, dataset.ErrEmptyDataset
	}
	if len(names) != d.NumColumns() {
		return 0, fmt.Errorf("%w: %d column names for %d columns", dataset.ErrInconsistentSamples, len(names), d.NumColumns())
	}
	columns := make([]Column, 0, len(names)+1)
	columnNames := make([]string, 0, len(names)+1)
	for i, n := range names {
		columns = append(columns, Column{n, d.ColumnType(i)})
		columnNames = append(columnNames, n)
	}
	columns = append(columns, Column{label, d.LabelType()})
	columnNames = append(columnNames, label)
	if err := a.CreateSampleTable(ctx, table, columns); err != nil {
		return 0, fmt.Errorf("creating table %s: %v", table, err)
	}
	rows := make([][]interface{}, d.NumRows())
	for i, s := range d.Samples() {
		row := make([]interface{}, 0, len(s)+1)
		row = append(row, s...)
		rows[i] = append(row, d.Label(i))
	}
	n, err := a.AddSamples(ctx, table, columnNames, rows)
	if err != nil {
		return n, fmt.Errorf("storing samples on table %s: %v", table, err)
	}
	return n, nil
}

// value converts a value scanned from a database into a sample value.
func value(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case nil:
		return nil, fmt.Errorf("NULL values are not supported")
	case []byte:
		return string(v), nil
	case int64:
		return float64(v), nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	}
	return v, nil
}
