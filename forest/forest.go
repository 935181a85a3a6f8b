/*
Package forest trains ensembles of classification trees on bootstrap subsets
of a dataset (random forests) and aggregates their predictions.
*/
package forest

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/internal/stats"
	"github.com/pbanos/arbor/tree"
	"go.uber.org/zap"
)

const (
	// MinRatio is the smallest share of the dataset a bootstrap subset can
	// draw.
	MinRatio = 0.01
	// MaxRatio is the largest share of the dataset a bootstrap subset can
	// draw.
	MaxRatio = 0.99
)

/*
Forest is an ensemble of classification trees. Each tree is a clone of a base
CART grown on a subset of the training samples drawn with replacement, and
predictions average the class probabilities of every tree.
*/
type Forest struct {
	base         *tree.CART
	estimators   int
	ratio        float64
	workers      int
	rng          *rand.Rand
	logger       *zap.Logger
	grow         growFunc
	trees        []*tree.CART
	classes      []string
	featureCount int
}

// Option configures optional parameters of a Forest.
type Option func(*Forest)

// WithSeed makes the forest draw its subsets and tree seeds from a source
// initialized with the given seed, so that trainings can be reproduced.
func WithSeed(seed int64) Option {
	return func(f *Forest) {
		f.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger the forest reports training progress on.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Forest) {
		if logger != nil {
			f.logger = logger
		}
	}
}

/*
New takes a base classification tree, the number of trees to train, the
share of the training samples each of them is grown with and the number of
trees to grow simultaneously, and returns an untrained forest. It returns an
error wrapping tree.ErrInvalidConfiguration if any of the parameters is not
valid.
*/
func New(base *tree.CART, estimators int, ratio float64, workers int, opts ...Option) (*Forest, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: a base tree is required", tree.ErrInvalidConfiguration)
	}
	if base.Type() != tree.Classifier {
		return nil, fmt.Errorf("%w: base tree must be a classifier, got a %s", tree.ErrInvalidConfiguration, base.Type())
	}
	if estimators < 1 {
		return nil, fmt.Errorf("%w: estimators must be greater than 0, %d given", tree.ErrInvalidConfiguration, estimators)
	}
	if ratio < MinRatio || ratio > MaxRatio {
		return nil, fmt.Errorf("%w: ratio must be between %g and %g, %g given", tree.ErrInvalidConfiguration, MinRatio, MaxRatio, ratio)
	}
	if workers < 1 {
		return nil, fmt.Errorf("%w: workers must be greater than 0, %d given", tree.ErrInvalidConfiguration, workers)
	}
	f := &Forest{
		base:       base,
		estimators: estimators,
		ratio:      ratio,
		workers:    workers,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     zap.NewNop(),
		grow:       (*tree.CART).Grow,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

/*
Train takes a context and a labeled dataset and grows the trees of the forest
on a pool of workers. Subsets and tree seeds are drawn before dispatching
each tree, in order, so a seeded forest always grows the same trees.

If any tree fails to grow, trees not yet started are skipped and a *TaskError
is returned. If the context is cancelled before every tree is grown, Train
returns the context's error. In both cases the forest keeps the trees of its
previous training, if any.
*/
func (f *Forest) Train(ctx context.Context, d dataset.Dataset) error {
	ld, ok := d.(*dataset.Labeled)
	if !ok || ld == nil {
		return dataset.ErrLabelsAreMissing
	}
	if ld.Empty() {
		return dataset.ErrEmptyDataset
	}
	k := stats.Round(f.ratio * float64(ld.NumRows()))
	if k < 1 {
		k = 1
	}
	start := time.Now()
	f.logger.Info("training forest", zap.Int("estimators", f.estimators), zap.Int("workers", f.workers), zap.Int("samples", ld.NumRows()), zap.Int("subsetSize", k))
	trees := make([]*tree.CART, f.estimators)
	p := newPool(ctx, f.workers, f.grow, f.logger)
	defer p.stop()
	for i := 0; i < f.estimators; i++ {
		t := f.base.Clone()
		t.Seed(f.rng.Int63())
		subset := ld.RandomSubsetWithReplacement(k, f.rng)
		if !p.add(&task{i, t, subset, trees}) {
			break
		}
	}
	if err := p.waitForAll(); err != nil {
		f.logger.Error("training forest failed", zap.Error(err))
		return err
	}
	for _, t := range trees {
		if t == nil {
			f.logger.Warn("training forest cancelled", zap.Error(ctx.Err()))
			return ctx.Err()
		}
	}
	f.trees = trees
	f.classes = ld.PossibleOutcomes()
	f.featureCount = ld.NumColumns()
	f.logger.Info("forest trained", zap.Int("trees", len(trees)), zap.Strings("classes", f.classes), zap.Duration("elapsed", time.Since(start)))
	return nil
}

/*
Proba takes a dataset and returns, for each of its samples, the probability
of every class seen during training averaged over the trees of the forest.
*/
func (f *Forest) Proba(d dataset.Dataset) ([]map[string]float64, error) {
	if !f.Trained() {
		return nil, ErrNotTrained
	}
	if !d.Empty() && d.NumColumns() != f.featureCount {
		return nil, fmt.Errorf("%w: forest expects %d columns, dataset has %d", tree.ErrIncompatibleDataset, f.featureCount, d.NumColumns())
	}
	probabilities := make([]map[string]float64, d.NumRows())
	for i := range probabilities {
		dist := make(map[string]float64, len(f.classes))
		for _, c := range f.classes {
			dist[c] = 0.0
		}
		probabilities[i] = dist
	}
	for _, t := range f.trees {
		tp, err := t.Proba(d)
		if err != nil {
			return nil, err
		}
		for i, dist := range tp {
			for c, p := range dist {
				probabilities[i][c] += p
			}
		}
	}
	for _, dist := range probabilities {
		for c := range dist {
			dist[c] /= float64(f.estimators)
		}
	}
	return probabilities, nil
}

/*
Predict takes a dataset and returns the most probable class for each of its
samples. Ties are resolved in favour of the class seen first during training.
*/
func (f *Forest) Predict(d dataset.Dataset) ([]string, error) {
	probabilities, err := f.Proba(d)
	if err != nil {
		return nil, err
	}
	predictions := make([]string, len(probabilities))
	for i, dist := range probabilities {
		predictions[i] = stats.ArgMax(f.classes, dist)
	}
	return predictions, nil
}

/*
FeatureImportances returns the importance of each column averaged over the
trees of the forest, or an empty map if the forest has not been trained.
*/
func (f *Forest) FeatureImportances() map[int]float64 {
	importances := make(map[int]float64)
	if !f.Trained() {
		return importances
	}
	for _, t := range f.trees {
		for _, imp := range t.FeatureImportances() {
			importances[imp.Column] += imp.Value
		}
	}
	for column := range importances {
		importances[column] /= float64(len(f.trees))
	}
	return importances
}

// Trained returns whether the forest has been successfully trained.
func (f *Forest) Trained() bool {
	return len(f.trees) > 0
}

// Trees returns the trees of the forest in dispatch order.
func (f *Forest) Trees() []*tree.CART {
	return f.trees
}

// Classes returns the classes seen during training in first-seen order.
func (f *Forest) Classes() []string {
	return f.classes
}

// FeatureCount returns the number of columns of the training samples.
func (f *Forest) FeatureCount() int {
	return f.featureCount
}

// Estimators returns the number of trees the forest trains.
func (f *Forest) Estimators() int {
	return f.estimators
}
