package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/dataset/csv"
	"github.com/pbanos/arbor/dataset/mongodataset"
	"github.com/pbanos/arbor/dataset/sqldataset"
	"github.com/pbanos/arbor/dataset/sqldataset/pgadapter"
	"github.com/pbanos/arbor/dataset/sqldataset/sqlite3adapter"
	mgo "gopkg.in/mgo.v2"
)

// inputConfig holds the flags shared by commands that read datasets.
type inputConfig struct {
	*rootCmdConfig
	label             string
	table             string
	categoricalLabels bool
}

/*
readLabeled reads a labeled dataset from the given input: a PostgreSQL
connection URL, a MongoDB connection URL, an SQLite3 (.db) file or a CSV
file. An empty input reads CSV from STDIN.
*/
func (ic *inputConfig) readLabeled(ctx context.Context, input string) (*dataset.Labeled, []string, error) {
	switch {
	case strings.HasPrefix(input, "postgresql://"):
		ic.Logf("Creating PostgreSQL adapter for url %s to read table %s...", input, ic.table)
		adapter, err := pgadapter.New(input)
		if err != nil {
			return nil, nil, err
		}
		defer adapter.Close()
		return sqldataset.Read(ctx, adapter, ic.table, ic.label)
	case strings.HasPrefix(input, "mongodb://"):
		ic.Logf("Connecting to MongoDB at %s to read collection %s...", input, ic.table)
		session, err := mgo.Dial(input)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MongoDB: %v", err)
		}
		defer session.Close()
		return mongodataset.Read(ctx, session, ic.table, ic.label)
	case strings.HasSuffix(input, ".db"):
		ic.Logf("Creating SQLite3 adapter for file %s to read table %s...", input, ic.table)
		adapter, err := sqlite3adapter.New(input)
		if err != nil {
			return nil, nil, err
		}
		defer adapter.Close()
		return sqldataset.Read(ctx, adapter, ic.table, ic.label)
	}
	if input == "" {
		ic.Logf("Reading CSV from STDIN...")
	} else {
		ic.Logf("Reading CSV file %s...", input)
	}
	var opts []csv.Option
	if ic.categoricalLabels {
		opts = append(opts, csv.CategoricalLabels())
	}
	return csv.ReadLabeledFromFilePath(input, ic.label, opts...)
}
