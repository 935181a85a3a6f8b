package tree

import (
	"errors"
	"math"
	"testing"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/internal/stats"
	. "github.com/smartystreets/goconvey/convey"
)

// separable returns n rows with a single continuous column holding the row
// number, labeled "A" on the first half and "B" on the second.
func separable(n int) *dataset.Labeled {
	samples := make([]dataset.Sample, n)
	labels := make([]interface{}, n)
	for i := range samples {
		samples[i] = dataset.Sample{float64(i)}
		labels[i] = "A"
		if i >= n/2 {
			labels[i] = "B"
		}
	}
	d, err := dataset.NewLabeled(samples, labels)
	if err != nil {
		panic(err)
	}
	return d
}

func mustLabeled(samples []dataset.Sample, labels []interface{}) *dataset.Labeled {
	d, err := dataset.NewLabeled(samples, labels)
	if err != nil {
		panic(err)
	}
	return d
}

func leaves(t *CART) []Leaf {
	var result []Leaf
	for _, n := range t.Dump() {
		if l, ok := n.(Leaf); ok {
			result = append(result, l)
		}
	}
	return result
}

func TestNew(t *testing.T) {
	Convey("Given invalid hyperparameters", t, func() {
		invalid := []Config{
			{MaxDepth: 0, MaxLeafSize: 1},
			{MaxDepth: 1, MaxLeafSize: 0},
			{MaxDepth: 1, MaxLeafSize: 1, MinPurityIncrease: -0.1},
			{MaxDepth: 1, MaxLeafSize: 1, MaxFeatures: -1},
		}
		Convey("every constructor fails with ErrInvalidConfiguration", func() {
			for _, c := range invalid {
				_, err := NewClassificationTree(c)
				So(errors.Is(err, ErrInvalidConfiguration), ShouldBeTrue)
				_, err = NewExtraTreeClassifier(c)
				So(errors.Is(err, ErrInvalidConfiguration), ShouldBeTrue)
				_, err = NewRegressionTree(c)
				So(errors.Is(err, ErrInvalidConfiguration), ShouldBeTrue)
			}
		})
	})
	Convey("A splitter is required", t, func() {
		_, err := New(DefaultConfig(), nil, Classifier)
		So(errors.Is(err, ErrInvalidConfiguration), ShouldBeTrue)
	})
	Convey("A new tree is bare", t, func() {
		cart, err := NewClassificationTree(DefaultConfig())
		So(err, ShouldBeNil)
		So(cart.Bare(), ShouldBeTrue)
		So(cart.Height(), ShouldEqual, 0)
		So(cart.Balance(), ShouldEqual, 0)
		So(cart.Dump(), ShouldBeEmpty)
		So(cart.FeatureImportances(), ShouldBeEmpty)
		So(cart.Search(dataset.Sample{1.0}), ShouldBeNil)
		_, err = cart.Predict(separable(4))
		So(err, ShouldEqual, ErrBareTree)
	})
}

func TestGrow(t *testing.T) {
	Convey("Given a separable dataset of 10 rows", t, func() {
		d := separable(10)
		Convey("a classification tree with max depth 2 splits it once", func() {
			cart, err := NewClassificationTree(Config{MaxDepth: 2, MaxLeafSize: 1})
			So(err, ShouldBeNil)
			So(cart.Grow(d), ShouldBeNil)
			So(cart.Bare(), ShouldBeFalse)
			So(cart.Height(), ShouldEqual, 2)
			So(cart.Balance(), ShouldEqual, 0)
			So(cart.FeatureCount(), ShouldEqual, 1)
			So(cart.Dump(), ShouldHaveLength, 3)
			ls := leaves(cart)
			So(ls, ShouldHaveLength, 2)
			for _, l := range ls {
				So(l.Size(), ShouldEqual, 5)
				So(l.(*Best).Impurity(), ShouldEqual, 0.0)
			}
			So(cart.Root().Value, ShouldEqual, 5.0)
			So(cart.Root().PurityIncrease, ShouldAlmostEqual, 0.5)
			So(cart.FeatureImportances(), ShouldResemble, []Importance{{0, 1.0}})
			Convey("and searches route samples to the leaf of their class", func() {
				So(cart.Search(dataset.Sample{2.0}).Outcome(), ShouldEqual, "A")
				So(cart.Search(dataset.Sample{7.0}).Outcome(), ShouldEqual, "B")
				So(cart.Search(dataset.Sample{4.99}).Outcome(), ShouldEqual, "A")
				So(cart.Search(dataset.Sample{5.0}).Outcome(), ShouldEqual, "B")
			})
			Convey("and the grown nodes release their partitions", func() {
				left, right := cart.Root().Groups()
				So(left, ShouldBeNil)
				So(right, ShouldBeNil)
			})
		})
		Convey("growing again replaces the previous tree", func() {
			cart, _ := NewClassificationTree(Config{MaxDepth: 2, MaxLeafSize: 1})
			So(cart.Grow(d), ShouldBeNil)
			first := cart.Root()
			So(cart.Grow(d), ShouldBeNil)
			So(cart.Root(), ShouldNotPointTo, first)
			So(cart.Dump(), ShouldHaveLength, 3)
		})
	})

	Convey("Given a dataset whose rows cannot be separated", t, func() {
		d := mustLabeled(
			[]dataset.Sample{{1.0}, {1.0}, {1.0}, {1.0}},
			[]interface{}{"A", "B", "A", "B"},
		)
		Convey("the root gets a single leaf with every row on both sides", func() {
			cart, _ := NewClassificationTree(Config{MaxDepth: 10, MaxLeafSize: 1})
			So(cart.Grow(d), ShouldBeNil)
			root := cart.Root()
			So(root.Left, ShouldEqual, root.Right)
			So(root.Left.(Leaf).Size(), ShouldEqual, 4)
			So(root.PurityIncrease, ShouldEqual, 0.0)
			So(cart.Height(), ShouldEqual, 2)
			So(cart.Dump(), ShouldHaveLength, 2)
		})
	})

	Convey("Given a dataset with several classes and columns", t, func() {
		samples := make([]dataset.Sample, 40)
		labels := make([]interface{}, 40)
		for i := range samples {
			colour := "red"
			if i%3 == 0 {
				colour = "blue"
			}
			samples[i] = dataset.Sample{float64(i % 8), colour, float64(i % 5)}
			labels[i] = []string{"a", "b", "c", "d"}[(i%8)/2]
		}
		d := mustLabeled(samples, labels)
		cart, _ := NewClassificationTree(Config{MaxDepth: 1 << 10, MaxLeafSize: 1})
		So(cart.Grow(d), ShouldBeNil)
		Convey("every leaf holds at most MaxLeafSize rows or is pure", func() {
			for _, l := range leaves(cart) {
				b := l.(*Best)
				So(b.Size() <= 1 || b.Impurity() == 0.0, ShouldBeTrue)
			}
		})
		Convey("leaf sizes add up to the number of rows", func() {
			var total int
			for _, l := range leaves(cart) {
				total += l.Size()
			}
			So(total, ShouldEqual, 40)
		})
		Convey("training samples are predicted correctly", func() {
			predictions, err := cart.Predict(d)
			So(err, ShouldBeNil)
			for i, p := range predictions {
				So(p, ShouldEqual, d.Label(i))
			}
		})
		Convey("feature importances cover every column and add up to 1", func() {
			importances := cart.FeatureImportances()
			So(importances, ShouldHaveLength, 3)
			var sum float64
			for i, imp := range importances {
				sum += imp.Value
				if i > 0 {
					So(imp.Value, ShouldBeLessThanOrEqualTo, importances[i-1].Value)
				}
			}
			So(sum, ShouldAlmostEqual, 1.0)
			So(importances[0].Column, ShouldEqual, 0)
		})
		Convey("the height and balance of each node derive from its children", func() {
			for _, n := range cart.Dump() {
				c, ok := n.(*Comparison)
				if !ok {
					So(n.Height(), ShouldEqual, 1)
					So(n.Balance(), ShouldEqual, 0)
					continue
				}
				lh, rh := c.Left.Height(), c.Right.Height()
				So(c.Height(), ShouldEqual, 1+int(math.Max(float64(lh), float64(rh))))
				So(c.Balance(), ShouldEqual, rh-lh)
			}
		})
		Convey("probabilities of each sample add up to 1", func() {
			probabilities, err := cart.Proba(d)
			So(err, ShouldBeNil)
			So(probabilities, ShouldHaveLength, 40)
			for _, dist := range probabilities {
				var sum float64
				for _, p := range dist {
					sum += p
				}
				So(sum, ShouldAlmostEqual, 1.0)
			}
		})
		Convey("samples with a different number of columns are rejected", func() {
			u, _ := dataset.NewUnlabeled([]dataset.Sample{{1.0}})
			_, err := cart.Predict(u)
			So(errors.Is(err, ErrIncompatibleDataset), ShouldBeTrue)
		})
	})

	Convey("Given a categorical column", t, func() {
		d := mustLabeled(
			[]dataset.Sample{{"red"}, {"blue"}, {"red"}, {"blue"}, {"green"}},
			[]interface{}{"x", "y", "x", "y", "y"},
		)
		cart, _ := NewClassificationTree(Config{MaxDepth: 5, MaxLeafSize: 1})
		So(cart.Grow(d), ShouldBeNil)
		Convey("the root splits on a category", func() {
			So(cart.Root().Categorical(), ShouldBeTrue)
			So(cart.Root().Value, ShouldEqual, "red")
			So(cart.Search(dataset.Sample{"red"}).Outcome(), ShouldEqual, "x")
			So(cart.Search(dataset.Sample{"green"}).Outcome(), ShouldEqual, "y")
		})
	})

	Convey("Given rows alternating between two classes", t, func() {
		d := mustLabeled(
			[]dataset.Sample{{0.0}, {1.0}, {2.0}, {3.0}, {4.0}, {5.0}},
			[]interface{}{"A", "B", "A", "B", "A", "B"},
		)
		grow := func(minPurityIncrease float64) *CART {
			cart, err := NewClassificationTree(Config{MaxDepth: 10, MaxLeafSize: 1, MinPurityIncrease: minPurityIncrease})
			So(err, ShouldBeNil)
			So(cart.Grow(d), ShouldBeNil)
			return cart
		}
		Convey("without a minimum purity increase every row is peeled off", func() {
			cart := grow(0.0)
			So(cart.Height(), ShouldEqual, 6)
			So(cart.Dump(), ShouldHaveLength, 11)
		})
		Convey("a side whose purity increase equals the minimum is still split", func() {
			cart := grow(0.08)
			So(cart.Height(), ShouldEqual, 6)
			So(cart.Dump(), ShouldHaveLength, 11)
			right, ok := cart.Root().Right.(*Comparison)
			So(ok, ShouldBeTrue)
			So(right.PurityIncrease, ShouldAlmostEqual, 0.08, 1e-9)
		})
		Convey("sides below the minimum purity increase become leaves", func() {
			cart := grow(0.1)
			So(cart.Height(), ShouldEqual, 2)
			So(cart.Dump(), ShouldHaveLength, 3)
			So(cart.Root().PurityIncrease, ShouldAlmostEqual, 0.1, 1e-9)
			right, ok := cart.Root().Right.(Leaf)
			So(ok, ShouldBeTrue)
			So(right.Size(), ShouldEqual, 5)
		})
		Convey("only the root may split with less than the minimum purity increase", func() {
			for _, minPurityIncrease := range []float64{0.0, 0.05, 0.08, 0.1, 0.15, 0.9} {
				cart := grow(minPurityIncrease)
				for _, n := range cart.Dump() {
					if c, ok := n.(*Comparison); ok && c != cart.Root() {
						So(c.PurityIncrease+stats.Epsilon, ShouldBeGreaterThan, minPurityIncrease)
					}
				}
			}
		})
	})

	Convey("Growing without data fails", t, func() {
		cart, _ := NewClassificationTree(DefaultConfig())
		So(cart.Grow(nil), ShouldEqual, dataset.ErrLabelsAreMissing)
		empty := mustLabeled(nil, nil)
		So(cart.Grow(empty), ShouldEqual, dataset.ErrEmptyDataset)
		So(cart.Bare(), ShouldBeTrue)
	})
}

func TestRegressionTree(t *testing.T) {
	Convey("Given a step function", t, func() {
		samples := make([]dataset.Sample, 10)
		labels := make([]interface{}, 10)
		for i := range samples {
			samples[i] = dataset.Sample{float64(i)}
			labels[i] = 1.0
			if i >= 5 {
				labels[i] = 10.0
			}
		}
		d := mustLabeled(samples, labels)
		cart, err := NewRegressionTree(Config{MaxDepth: 2, MaxLeafSize: 1})
		So(err, ShouldBeNil)
		So(cart.Type(), ShouldEqual, Regressor)
		So(cart.Grow(d), ShouldBeNil)
		Convey("it predicts the mean of each step", func() {
			So(cart.Root().Value, ShouldEqual, 5.0)
			predictions, err := cart.Predict(d)
			So(err, ShouldBeNil)
			for i, p := range predictions {
				So(p, ShouldEqual, d.Label(i))
			}
			leaf := cart.Search(dataset.Sample{3.0}).(*Average)
			So(leaf.Mean(), ShouldEqual, 1.0)
			So(leaf.Variance(), ShouldEqual, 0.0)
		})
		Convey("it does not estimate probabilities", func() {
			_, err := cart.Proba(d)
			So(errors.Is(err, ErrIncompatibleLabels), ShouldBeTrue)
		})
	})
	Convey("Categorical labels cannot be regressed", t, func() {
		cart, _ := NewRegressionTree(DefaultConfig())
		err := cart.Grow(separable(4))
		So(errors.Is(err, ErrIncompatibleLabels), ShouldBeTrue)
		So(cart.Bare(), ShouldBeTrue)
	})
}

func TestExtraTreeClassifier(t *testing.T) {
	Convey("Given a seeded extremely randomized tree", t, func() {
		d := separable(20)
		grow := func() *CART {
			cart, err := NewExtraTreeClassifier(Config{MaxDepth: 1 << 10, MaxLeafSize: 1})
			So(err, ShouldBeNil)
			cart.Seed(42)
			So(cart.Grow(d), ShouldBeNil)
			return cart
		}
		cart := grow()
		Convey("it fits the training data", func() {
			predictions, err := cart.Predict(d)
			So(err, ShouldBeNil)
			for i, p := range predictions {
				So(p, ShouldEqual, d.Label(i))
			}
		})
		Convey("the same seed grows the same tree", func() {
			So(grow().String(), ShouldEqual, cart.String())
		})
	})
}

func TestClone(t *testing.T) {
	Convey("A clone keeps the configuration but not the tree", t, func() {
		cart, _ := NewClassificationTree(Config{MaxDepth: 3, MaxLeafSize: 2, MaxFeatures: 1})
		So(cart.Grow(separable(6)), ShouldBeNil)
		clone := cart.Clone()
		So(clone.Bare(), ShouldBeTrue)
		So(clone.Config(), ShouldResemble, cart.Config())
		So(clone.Type(), ShouldEqual, Classifier)
		So(clone.Grow(separable(6)), ShouldBeNil)
		So(clone.Root(), ShouldNotPointTo, cart.Root())
	})
}
