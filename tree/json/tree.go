/*
Package json exports grown trees as JSON documents for inspection.
*/
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pbanos/arbor/tree"
)

type node struct {
	ID             int                `json:"id"`
	Column         *int               `json:"column,omitempty"`
	Feature        string             `json:"feature,omitempty"`
	Value          interface{}        `json:"value,omitempty"`
	PurityIncrease *float64           `json:"purityIncrease,omitempty"`
	Left           *int               `json:"left,omitempty"`
	Right          *int               `json:"right,omitempty"`
	Outcome        interface{}        `json:"outcome,omitempty"`
	Probabilities  map[string]float64 `json:"probs,omitempty"`
	Impurity       *float64           `json:"impurity,omitempty"`
	Variance       *float64           `json:"variance,omitempty"`
	Size           *int               `json:"size,omitempty"`
}

/*
WriteJSONTree takes a grown tree, the names of the columns it was grown on
(nil to leave them out) and an io.Writer and serializes the tree as JSON
onto the io.Writer.

A tree is serialized as a JSON object with the following fields:
* "kind": "classifier" or "regressor"
* "featureCount": the number of columns of the training samples
* "rootID": the id of the node at the root of the tree
* "nodes": an array with every node of the tree. Comparisons hold their
  "column", "value", "purityIncrease" and the ids of their "left" and
  "right" children; leaves hold their "outcome" and "size" plus "probs" and
  "impurity" for classifiers or "variance" for regressors. A leaf shared by
  both sides of a comparison appears once.

An error is returned if the tree has not been grown or cannot be serialized
or written onto the io.Writer.
*/
func WriteJSONTree(t *tree.CART, names []string, w io.Writer) error {
	if t.Bare() {
		return tree.ErrBareTree
	}
	if names != nil && len(names) != t.FeatureCount() {
		return fmt.Errorf("%w: %d names for %d columns", tree.ErrIncompatibleDataset, len(names), t.FeatureCount())
	}
	nodes := t.Dump()
	ids := make(map[tree.BinaryNode]int, len(nodes))
	for i, n := range nodes {
		ids[n] = i
	}
	header := fmt.Sprintf(`{"kind":%q,"featureCount":%d,"rootID":%d,"nodes":[`, t.Type(), t.FeatureCount(), ids[t.Root()])
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for i, n := range nodes {
		if i != 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		jn, err := json.Marshal(encode(i, n, ids, names))
		if err != nil {
			return fmt.Errorf("marshalling node %d: %v", i, err)
		}
		if _, err = w.Write(jn); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]}")
	return err
}

func encode(id int, n tree.BinaryNode, ids map[tree.BinaryNode]int, names []string) *node {
	jn := &node{ID: id}
	switch n := n.(type) {
	case *tree.Comparison:
		column, pi := n.Column, n.PurityIncrease
		left, right := ids[n.Left], ids[n.Right]
		jn.Column, jn.PurityIncrease = &column, &pi
		jn.Value = n.Value
		jn.Left, jn.Right = &left, &right
		if names != nil {
			jn.Feature = names[column]
		}
	case *tree.Best:
		impurity, size := n.Impurity(), n.Size()
		jn.Outcome = n.Class()
		jn.Probabilities = n.Probabilities()
		jn.Impurity, jn.Size = &impurity, &size
	case *tree.Average:
		variance, size := n.Variance(), n.Size()
		jn.Outcome = n.Mean()
		jn.Variance, jn.Size = &variance, &size
	}
	return jn
}
