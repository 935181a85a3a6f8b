/*
Package tree grows binary decision trees (CART) from labeled datasets and
uses them to make predictions.

A tree is grown by a CART holding a Config and a Splitter: Gini for
classification trees, ExtraGini for extremely randomized classification
trees and Variance for regression trees.
*/
package tree

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/internal/stats"
)

// EstimatorType tells whether a tree predicts classes or continuous values.
type EstimatorType int

const (
	// Classifier trees predict classes and estimate their probabilities.
	Classifier EstimatorType = iota
	// Regressor trees predict continuous values.
	Regressor
)

func (et EstimatorType) String() string {
	if et == Regressor {
		return "regressor"
	}
	return "classifier"
}

// Error is the type of the errors returned by the package.
type Error string

func (e Error) Error() string {
	return string(e)
}

/*
ErrInvalidConfiguration is returned (wrapped with the offending parameter)
when a tree or an ensemble of trees is built with invalid hyperparameters.
*/
const ErrInvalidConfiguration = Error("invalid configuration")

/*
ErrIncompatibleLabels is returned when a tree is grown with labels it cannot
learn from, such as a regression tree with categorical labels.
*/
const ErrIncompatibleLabels = Error("labels are incompatible with the estimator")

/*
ErrIncompatibleDataset is returned when predicting samples whose number of
columns differs from the one of the training data.
*/
const ErrIncompatibleDataset = Error("dataset is incompatible with the estimator")

// ErrBareTree is returned when predicting with a tree that has not been grown.
const ErrBareTree = Error("tree has not been grown")

/*
Config holds the hyperparameters of a CART.
*/
type Config struct {
	// MaxDepth is the depth at which nodes are turned into leaves
	// regardless of their purity. The root is at depth 1.
	MaxDepth int
	// MaxLeafSize is the maximum number of samples a leaf can hold
	// before the grower tries to split it.
	MaxLeafSize int
	// MinPurityIncrease is the minimum impurity reduction a split
	// must achieve to be attached to the tree.
	MinPurityIncrease float64
	// MaxFeatures is the number of randomly chosen columns evaluated
	// on each split, 0 to evaluate all of them.
	MaxFeatures int
}

// DefaultConfig returns a Config that grows trees only limited by purity.
func DefaultConfig() Config {
	return Config{
		MaxDepth:          1 << 20,
		MaxLeafSize:       3,
		MinPurityIncrease: 1e-7,
	}
}

// Validate returns an error wrapping ErrInvalidConfiguration if any of the
// hyperparameters is out of range.
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: max depth must be greater than 0, %d given", ErrInvalidConfiguration, c.MaxDepth)
	}
	if c.MaxLeafSize < 1 {
		return fmt.Errorf("%w: max leaf size must be greater than 0, %d given", ErrInvalidConfiguration, c.MaxLeafSize)
	}
	if c.MinPurityIncrease < 0 {
		return fmt.Errorf("%w: min purity increase must be greater or equal to 0, %g given", ErrInvalidConfiguration, c.MinPurityIncrease)
	}
	if c.MaxFeatures < 0 {
		return fmt.Errorf("%w: max features must be greater or equal to 0, %d given", ErrInvalidConfiguration, c.MaxFeatures)
	}
	return nil
}

/*
CART grows a binary decision tree with a Splitter and queries it. Its zero
value is not usable, build one with New or one of the variant constructors.
*/
type CART struct {
	config       Config
	splitter     Splitter
	kind         EstimatorType
	rng          *rand.Rand
	root         *Comparison
	featureCount int
}

// Importance is the share of the total purity increase of a tree achieved
// by splits on a column.
type Importance struct {
	Column int
	Value  float64
}

type frame struct {
	node  *Comparison
	depth int
}

/*
New takes a Config, a Splitter and the type of estimator the splitter
produces and returns a CART without a tree, or an error wrapping
ErrInvalidConfiguration.
*/
func New(c Config, s Splitter, kind EstimatorType) (*CART, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: a splitter is required", ErrInvalidConfiguration)
	}
	return &CART{
		config:   c,
		splitter: s,
		kind:     kind,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// NewClassificationTree returns a CART that grows Gini classification trees.
func NewClassificationTree(c Config) (*CART, error) {
	return New(c, Gini{}, Classifier)
}

// NewExtraTreeClassifier returns a CART that grows extremely randomized
// classification trees.
func NewExtraTreeClassifier(c Config) (*CART, error) {
	return New(c, ExtraGini{}, Classifier)
}

// NewRegressionTree returns a CART that grows variance-reducing regression
// trees.
func NewRegressionTree(c Config) (*CART, error) {
	return New(c, Variance{}, Regressor)
}

/*
Clone returns a CART with the same configuration and splitter and its own
source of randomness, without the tree grown by the receiver.
*/
func (t *CART) Clone() *CART {
	return &CART{
		config:   t.config,
		splitter: t.splitter,
		kind:     t.kind,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed resets the source of randomness used to choose split columns and
// random split values.
func (t *CART) Seed(seed int64) {
	t.rng = rand.New(rand.NewSource(seed))
}

// Config returns the hyperparameters of the tree.
func (t *CART) Config() Config {
	return t.config
}

// Type returns whether the tree is a classifier or a regressor.
func (t *CART) Type() EstimatorType {
	return t.kind
}

// Root returns the root of the tree, nil if it has not been grown.
func (t *CART) Root() *Comparison {
	return t.root
}

// FeatureCount returns the number of columns of the data the tree was
// grown with.
func (t *CART) FeatureCount() int {
	return t.featureCount
}

/*
Grow takes a labeled dataset and grows a tree from it, replacing any tree
previously grown. It returns dataset.ErrLabelsAreMissing if no dataset is
given, dataset.ErrEmptyDataset if it has no samples, and an error wrapping
ErrIncompatibleLabels if a regression tree gets categorical labels.
*/
func (t *CART) Grow(d *dataset.Labeled) error {
	if d == nil {
		return dataset.ErrLabelsAreMissing
	}
	if d.Empty() {
		return dataset.ErrEmptyDataset
	}
	if d.NumColumns() == 0 {
		return fmt.Errorf("%w: samples have no columns", ErrIncompatibleDataset)
	}
	if t.kind == Regressor && d.LabelType() != dataset.Continuous {
		return fmt.Errorf("%w: regression trees require continuous labels", ErrIncompatibleLabels)
	}
	t.root = nil
	t.featureCount = d.NumColumns()
	root := t.split(d)
	stack := []frame{{root, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		current, depth := f.node, f.depth+1
		left, right := current.Groups()
		switch {
		case left.Empty() || right.Empty():
			merged, err := left.Append(right)
			if err != nil {
				return err
			}
			leaf := t.splitter.Terminate(merged)
			current.Left, current.Right = leaf, leaf
		case depth >= t.config.MaxDepth:
			current.Left = t.splitter.Terminate(left)
			current.Right = t.splitter.Terminate(right)
		default:
			current.Left = t.branch(left, depth, &stack)
			current.Right = t.branch(right, depth, &stack)
		}
		current.Cleanup()
	}
	t.root = root
	return nil
}

// branch returns the node to attach for one side of a split, pushing it
// on the stack when it needs further growth.
func (t *CART) branch(d *dataset.Labeled, depth int, stack *[]frame) BinaryNode {
	if d.NumRows() > t.config.MaxLeafSize {
		node := t.split(d)
		if node.PurityIncrease+stats.Epsilon > t.config.MinPurityIncrease {
			*stack = append(*stack, frame{node, depth})
			return node
		}
	}
	return t.splitter.Terminate(d)
}

func (t *CART) split(d *dataset.Labeled) *Comparison {
	return t.splitter.FindBestSplit(d, t.columns(), t.rng)
}

// columns returns the columns to evaluate on a split: all of them, or a
// random selection of MaxFeatures.
func (t *CART) columns() []int {
	if t.config.MaxFeatures > 0 && t.config.MaxFeatures < t.featureCount {
		return t.rng.Perm(t.featureCount)[:t.config.MaxFeatures]
	}
	columns := make([]int, t.featureCount)
	for i := range columns {
		columns[i] = i
	}
	return columns
}

/*
Search takes a sample and returns the leaf it reaches from the root of the
tree, or nil if the tree has not been grown. The sample must have at least
as many columns as the training data.
*/
func (t *CART) Search(s dataset.Sample) Leaf {
	if t.root == nil {
		return nil
	}
	var current BinaryNode = t.root
	for {
		switch n := current.(type) {
		case *Comparison:
			if dataset.GoesLeft(s[n.Column], n.Value) {
				current = n.Left
			} else {
				current = n.Right
			}
		case Leaf:
			return n
		default:
			return nil
		}
	}
}

/*
Predict takes a dataset and returns the outcome predicted for each of its
samples: a class string for classifiers and a float64 for regressors.
*/
func (t *CART) Predict(d dataset.Dataset) ([]interface{}, error) {
	if err := t.compatible(d); err != nil {
		return nil, err
	}
	predictions := make([]interface{}, d.NumRows())
	for i, s := range d.Samples() {
		predictions[i] = t.Search(s).Outcome()
	}
	return predictions, nil
}

/*
Proba takes a dataset and returns, for each of its samples, the probability
of every class seen on the leaf it reaches. Only classifiers estimate
probabilities.
*/
func (t *CART) Proba(d dataset.Dataset) ([]map[string]float64, error) {
	if t.kind != Classifier {
		return nil, fmt.Errorf("%w: a %s does not estimate probabilities", ErrIncompatibleLabels, t.kind)
	}
	if err := t.compatible(d); err != nil {
		return nil, err
	}
	probabilities := make([]map[string]float64, d.NumRows())
	for i, s := range d.Samples() {
		leaf, ok := t.Search(s).(*Best)
		if !ok {
			return nil, fmt.Errorf("%w: sample %d reached a leaf without probabilities", ErrIncompatibleLabels, i)
		}
		dist := make(map[string]float64, len(leaf.probabilities))
		for c, p := range leaf.probabilities {
			dist[c] = p
		}
		probabilities[i] = dist
	}
	return probabilities, nil
}

func (t *CART) compatible(d dataset.Dataset) error {
	if t.root == nil {
		return ErrBareTree
	}
	if !d.Empty() && d.NumColumns() != t.featureCount {
		return fmt.Errorf("%w: tree expects %d columns, dataset has %d", ErrIncompatibleDataset, t.featureCount, d.NumColumns())
	}
	return nil
}

/*
FeatureImportances returns the share of the total purity increase of the
tree achieved by each column, sorted by descending importance (ties by
column). It returns nil for a tree that has not been grown.
*/
func (t *CART) FeatureImportances() []Importance {
	if t.root == nil {
		return nil
	}
	totals := make([]float64, t.featureCount)
	var total float64
	for _, n := range t.Dump() {
		if c, ok := n.(*Comparison); ok {
			totals[c.Column] += c.PurityIncrease
			total += c.PurityIncrease
		}
	}
	if total == 0 {
		total = stats.Epsilon
	}
	importances := make([]Importance, len(totals))
	for column, v := range totals {
		importances[column] = Importance{column, v / total}
	}
	sort.SliceStable(importances, func(i, j int) bool {
		return importances[i].Value > importances[j].Value
	})
	return importances
}

/*
Dump returns every node of the tree exactly once, in the order they are
popped from a traversal stack starting at the root.
*/
func (t *CART) Dump() []BinaryNode {
	if t.root == nil {
		return nil
	}
	var nodes []BinaryNode
	stack := []BinaryNode{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes = append(nodes, n)
		if c, ok := n.(*Comparison); ok {
			stack = append(stack, c.Left)
			if c.Right != c.Left {
				stack = append(stack, c.Right)
			}
		}
	}
	return nodes
}

// Height returns the height of the tree, 0 if it has not been grown.
func (t *CART) Height() int {
	if t.root == nil {
		return 0
	}
	return t.root.Height()
}

// Balance returns the balance of the root of the tree, 0 if it has not been
// grown.
func (t *CART) Balance() int {
	if t.root == nil {
		return 0
	}
	return t.root.Balance()
}

// Bare returns whether the tree has not been grown.
func (t *CART) Bare() bool {
	return t.root == nil
}

func (t *CART) String() string {
	if t.root == nil {
		return "(bare tree)\n"
	}
	return subtreeString(t.root)
}

func subtreeString(n BinaryNode) string {
	result := fmt.Sprintf("[ %v ]\n", n)
	children := n.Children()
	if len(children) == 2 && children[0] == children[1] {
		children = children[:1]
	}
	for i, child := range children {
		for j, line := range strings.Split(subtreeString(child), "\n") {
			if len(line) == 0 {
				continue
			}
			switch {
			case j == 0:
				result = fmt.Sprintf("%s|__%s\n", result, line)
			case i == len(children)-1:
				result = fmt.Sprintf("%s   %s\n", result, line)
			default:
				result = fmt.Sprintf("%s|  %s\n", result, line)
			}
		}
	}
	return result
}
