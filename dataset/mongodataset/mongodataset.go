/*
Package mongodataset loads labeled datasets from MongoDB collections and
stores them on them.

Each document of a collection is a sample: its fields are the columns of the
dataset and one of them holds the label. The columns of the dataset follow
the field order of the first document read, without its "_id" field.
*/
package mongodataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbanos/arbor/dataset"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

const idField = "_id"

/*
Read takes a context, a MongoDB session, the name of a collection on the
session's default database and the name of the field holding the labels,
and returns a labeled dataset with the documents in the collection and the
names of its columns.
*/
func Read(ctx context.Context, session *mgo.Session, collection, label string) (*dataset.Labeled, []string, error) {
	if err := validateField(label); err != nil {
		return nil, nil, err
	}
	var columns []string
	var samples []dataset.Sample
	var labels []interface{}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	docs, errs := stream(ctx, session.DB("").C(collection))
	for doc := range docs {
		if columns == nil {
			columns = columnsOf(doc, label)
		}
		s, l, err := sampleFrom(doc, columns, label)
		if err != nil {
			return nil, nil, fmt.Errorf("reading document %d from %s: %w", len(samples), collection, err)
		}
		samples = append(samples, s)
		labels = append(labels, l)
	}
	if err := <-errs; err != nil {
		return nil, nil, fmt.Errorf("reading collection %s: %v", collection, err)
	}
	d, err := dataset.NewLabeled(samples, labels)
	if err != nil {
		return nil, nil, err
	}
	return d, columns, nil
}

/*
Write takes a context, a MongoDB session, the name of a collection, the
names of the columns of a labeled dataset, the name of its label field and
the dataset, and inserts a document for each sample on the collection. The
label field gets an index. It returns the number of documents inserted.
*/
func Write(ctx context.Context, session *mgo.Session, collection string, names []string, label string, d *dataset.Labeled) (int, error) {
	if len(names) != d.NumColumns() {
		return 0, fmt.Errorf("%w: %d column names for %d columns", dataset.ErrInconsistentSamples, len(names), d.NumColumns())
	}
	for _, n := range append([]string{label}, names...) {
		if err := validateField(n); err != nil {
			return 0, err
		}
	}
	docs := make([]interface{}, 0, d.NumRows())
	for i, s := range d.Samples() {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		docs = append(docs, documentFor(s, names, label, d.Label(i)))
	}
	c := session.DB("").C(collection)
	err := c.EnsureIndex(mgo.Index{
		Key:        []string{label},
		Background: true,
	})
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err = c.Insert(docs...); err != nil {
		return 0, err
	}
	return len(docs), nil
}

func stream(ctx context.Context, c *mgo.Collection) (<-chan bson.D, <-chan error) {
	docs := make(chan bson.D)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(docs)
		var err error
		iter := c.Find(nil).Iter()
		defer iter.Close()
		var doc bson.D
	loop:
		for iter.Next(&doc) {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				break loop
			case docs <- doc:
			}
			doc = nil
		}
		if err == nil {
			err = iter.Err()
		}
		if err != nil {
			errs <- err
		}
	}()
	return docs, errs
}

func columnsOf(doc bson.D, label string) []string {
	columns := []string{}
	for _, e := range doc {
		if e.Name != idField && e.Name != label {
			columns = append(columns, e.Name)
		}
	}
	return columns
}

func sampleFrom(doc bson.D, columns []string, label string) (dataset.Sample, interface{}, error) {
	values := doc.Map()
	l, ok := values[label]
	if !ok {
		return nil, nil, fmt.Errorf("%w: no field %s", dataset.ErrLabelsAreMissing, label)
	}
	s := make(dataset.Sample, len(columns))
	for i, c := range columns {
		v, ok := values[c]
		if !ok || v == nil {
			return nil, nil, fmt.Errorf("%w: no value for field %s", dataset.ErrInconsistentSamples, c)
		}
		s[i] = v
	}
	return s, l, nil
}

func documentFor(s dataset.Sample, names []string, label string, l interface{}) bson.D {
	doc := make(bson.D, 0, len(names)+1)
	for i, n := range names {
		doc = append(doc, bson.DocElem{Name: n, Value: s[i]})
	}
	return append(doc, bson.DocElem{Name: label, Value: l})
}

func validateField(name string) error {
	if name == idField {
		return fmt.Errorf("invalid field name %q: reserved collection field", idField)
	}
	if name == "" {
		return fmt.Errorf("invalid field name %q", name)
	}
	if strings.ContainsAny(name, ".$") {
		return fmt.Errorf("invalid field name %q: contains reserved characters %q or %q", name, ".", "$")
	}
	return nil
}
