package csv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pbanos/arbor/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

const weather = `outlook,temperature,humidity,play
sunny,85,85.5,no
sunny,80,90,no
overcast,83,86,yes
rainy,70,96,yes
rainy,68,80,yes
`

func TestReadLabeled(t *testing.T) {
	Convey("Given a CSV stream with a header", t, func() {
		Convey("it is read as a labeled dataset", func() {
			d, names, err := ReadLabeled(strings.NewReader(weather), "play")
			So(err, ShouldBeNil)
			So(names, ShouldResemble, []string{"outlook", "temperature", "humidity"})
			So(d.NumRows(), ShouldEqual, 5)
			So(d.NumColumns(), ShouldEqual, 3)
			So(d.ColumnType(0), ShouldEqual, dataset.Categorical)
			So(d.ColumnType(1), ShouldEqual, dataset.Continuous)
			So(d.ColumnType(2), ShouldEqual, dataset.Continuous)
			So(d.Sample(0), ShouldResemble, dataset.Sample{"sunny", 85.0, 85.5})
			So(d.LabelType(), ShouldEqual, dataset.Categorical)
			So(d.PossibleOutcomes(), ShouldResemble, []string{"no", "yes"})
		})
		Convey("a missing label column is reported", func() {
			_, _, err := ReadLabeled(strings.NewReader(weather), "windy")
			So(errors.Is(err, dataset.ErrLabelsAreMissing), ShouldBeTrue)
		})
		Convey("numeric labels are continuous unless told otherwise", func() {
			d, _, err := ReadLabeled(strings.NewReader(weather), "humidity")
			So(err, ShouldBeNil)
			So(d.LabelType(), ShouldEqual, dataset.Continuous)
			d, _, err = ReadLabeled(strings.NewReader(weather), "temperature", CategoricalLabels())
			So(err, ShouldBeNil)
			So(d.LabelType(), ShouldEqual, dataset.Categorical)
			So(d.Label(0), ShouldEqual, "85")
		})
	})
}

func TestReadUnlabeled(t *testing.T) {
	Convey("A CSV stream is read as an unlabeled dataset with every column", t, func() {
		d, names, err := ReadUnlabeled(strings.NewReader(weather))
		So(err, ShouldBeNil)
		So(names, ShouldHaveLength, 4)
		So(d.NumRows(), ShouldEqual, 5)
		So(d.NumColumns(), ShouldEqual, 4)
	})
	Convey("A CSV file is read as an unlabeled dataset", t, func() {
		path := filepath.Join(t.TempDir(), "weather.csv")
		So(os.WriteFile(path, []byte(weather), 0644), ShouldBeNil)
		d, names, err := ReadUnlabeledFromFilePath(path)
		So(err, ShouldBeNil)
		So(names, ShouldResemble, []string{"outlook", "temperature", "humidity", "play"})
		So(d.NumRows(), ShouldEqual, 5)
		So(d.Sample(2), ShouldResemble, dataset.Sample{"overcast", 83.0, 86.0, "yes"})
	})
	Convey("A missing CSV file cannot be read", t, func() {
		_, _, err := ReadUnlabeledFromFilePath(filepath.Join(t.TempDir(), "missing.csv"))
		So(err, ShouldNotBeNil)
	})
}
