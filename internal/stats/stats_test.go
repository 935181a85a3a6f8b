package stats

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGini(t *testing.T) {
	Convey("A pure node has no impurity", t, func() {
		So(Gini(4, map[string]int{"a": 4}), ShouldEqual, 0.0)
	})
	Convey("An even two-class node has an impurity of 0.5", t, func() {
		So(Gini(10, map[string]int{"a": 5, "b": 5}), ShouldAlmostEqual, 0.5)
	})
	Convey("An empty node has no impurity", t, func() {
		So(Gini(0, nil), ShouldEqual, 0.0)
	})
}

func TestMeanVariance(t *testing.T) {
	Convey("Mean and variance are computed over all values", t, func() {
		mean, variance := MeanVariance([]float64{2, 4, 4, 4, 5, 5, 7, 9})
		So(mean, ShouldAlmostEqual, 5.0)
		So(variance, ShouldAlmostEqual, 4.0)
	})
	Convey("Constant values have no variance", t, func() {
		mean, variance := MeanVariance([]float64{10, 10, 10})
		So(mean, ShouldEqual, 10.0)
		So(variance, ShouldEqual, 0.0)
	})
	Convey("No values have a zero mean and variance", t, func() {
		mean, variance := MeanVariance(nil)
		So(mean, ShouldEqual, 0.0)
		So(variance, ShouldEqual, 0.0)
	})
}

func TestArgMax(t *testing.T) {
	Convey("The class with the highest value wins", t, func() {
		So(ArgMax([]string{"a", "b", "c"}, map[string]float64{"a": 0.2, "b": 0.5, "c": 0.3}), ShouldEqual, "b")
	})
	Convey("Ties go to the class listed first", t, func() {
		So(ArgMax([]string{"b", "a"}, map[string]float64{"a": 0.5, "b": 0.5}), ShouldEqual, "b")
	})
}
