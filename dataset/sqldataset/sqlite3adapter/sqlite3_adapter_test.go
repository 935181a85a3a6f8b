package sqlite3adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/dataset/sqldataset"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteAndRead(t *testing.T) {
	Convey("Given an in-memory SQLite3 database", t, func() {
		ctx := context.Background()
		a, err := New(":memory:")
		So(err, ShouldBeNil)
		defer a.Close()
		samples := make([]dataset.Sample, 23)
		labels := make([]interface{}, 23)
		for i := range samples {
			samples[i] = dataset.Sample{float64(i) / 2, []string{"sunny", "rainy"}[i%2]}
			labels[i] = []string{"play", "stay"}[i%2]
		}
		d, err := dataset.NewLabeled(samples, labels)
		So(err, ShouldBeNil)
		Convey("a dataset written on a table is read back in order", func() {
			n, err := sqldataset.Write(ctx, a, "weather", []string{"temperature", "outlook"}, "decision", d)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 23)
			read, names, err := sqldataset.Read(ctx, a, "weather", "decision")
			So(err, ShouldBeNil)
			So(names, ShouldResemble, []string{"temperature", "outlook"})
			So(read.NumRows(), ShouldEqual, 23)
			So(read.NumColumns(), ShouldEqual, 2)
			So(read.ColumnType(0), ShouldEqual, dataset.Continuous)
			So(read.ColumnType(1), ShouldEqual, dataset.Categorical)
			So(read.Samples(), ShouldResemble, d.Samples())
			So(read.Labels(), ShouldResemble, d.Labels())
		})
		Convey("reading with an unknown label column fails", func() {
			_, err := sqldataset.Write(ctx, a, "weather", []string{"temperature", "outlook"}, "decision", d)
			So(err, ShouldBeNil)
			_, _, err = sqldataset.Read(ctx, a, "weather", "outcome")
			So(errors.Is(err, dataset.ErrLabelsAreMissing), ShouldBeTrue)
		})
		Convey("reading a missing table fails", func() {
			_, _, err := sqldataset.Read(ctx, a, "missing", "decision")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestColumnName(t *testing.T) {
	Convey("Column names are quoted", t, func() {
		a := &adapter{}
		name, err := a.ColumnName("petal width")
		So(err, ShouldBeNil)
		So(name, ShouldEqual, `"petal width"`)
		_, err = a.ColumnName(`bad"name`)
		So(err, ShouldNotBeNil)
		_, err = a.ColumnName("")
		So(err, ShouldNotBeNil)
	})
}
