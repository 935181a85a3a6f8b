package tree

import (
	"fmt"

	"github.com/pbanos/arbor/dataset"
)

/*
BinaryNode is a node of a binary decision tree. It is either a Leaf, holding
the outcome for the samples that reach it, or a *Comparison that routes
samples to one of its two children.
*/
type BinaryNode interface {
	// Height returns the number of levels of the subtree rooted
	// at the node, the node itself included.
	Height() int
	// Balance returns the height of the right subtree minus the
	// height of the left subtree.
	Balance() int
	// Children returns the nodes directly under this one.
	Children() []BinaryNode
	binaryNode()
}

/*
Leaf is a terminal node. Its Outcome method returns the value predicted for
the samples that reach it and Size returns the number of training samples
that ended on it.
*/
type Leaf interface {
	BinaryNode
	Outcome() interface{}
	Size() int
}

/*
Comparison is a decision node. Samples whose value on Column goes left of
Value (see dataset.GoesLeft) continue on Left, the rest on Right.
PurityIncrease holds the impurity reduction obtained by the split on the
training data.
*/
type Comparison struct {
	Column         int
	Value          interface{}
	PurityIncrease float64
	Left           BinaryNode
	Right          BinaryNode
	// the training partitions, only held while the node is growing
	groups *[2]*dataset.Labeled
}

/*
NewComparison takes a column, a split value, the purity increase of the split
and the two partitions it produces and returns a Comparison that holds them
until Cleanup is called.
*/
func NewComparison(column int, value interface{}, purityIncrease float64, left, right *dataset.Labeled) *Comparison {
	return &Comparison{
		Column:         column,
		Value:          value,
		PurityIncrease: purityIncrease,
		groups:         &[2]*dataset.Labeled{left, right},
	}
}

/*
Groups returns the left and right partitions produced by the split, or two
nil datasets once the node has been cleaned up.
*/
func (c *Comparison) Groups() (*dataset.Labeled, *dataset.Labeled) {
	if c.groups == nil {
		return nil, nil
	}
	return c.groups[0], c.groups[1]
}

// Cleanup releases the partitions held by the node.
func (c *Comparison) Cleanup() {
	c.groups = nil
}

// Categorical returns whether the node splits on a category.
func (c *Comparison) Categorical() bool {
	_, ok := c.Value.(string)
	return ok
}

func (c *Comparison) Height() int {
	lh, rh := heightOf(c.Left), heightOf(c.Right)
	if lh > rh {
		return 1 + lh
	}
	return 1 + rh
}

func (c *Comparison) Balance() int {
	return heightOf(c.Right) - heightOf(c.Left)
}

func (c *Comparison) Children() []BinaryNode {
	var children []BinaryNode
	if c.Left != nil {
		children = append(children, c.Left)
	}
	if c.Right != nil {
		children = append(children, c.Right)
	}
	return children
}

func (c *Comparison) String() string {
	if c.Categorical() {
		return fmt.Sprintf("column %d == %v", c.Column, c.Value)
	}
	return fmt.Sprintf("column %d < %v", c.Column, c.Value)
}

func (c *Comparison) binaryNode() {}

func heightOf(n BinaryNode) int {
	if n == nil {
		return 0
	}
	return n.Height()
}
