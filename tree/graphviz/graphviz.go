/*
Package graphviz renders grown trees as Graphviz DOT digraphs.
*/
package graphviz

import (
	"fmt"
	"io"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/pbanos/arbor/tree"
)

const graphName = "G"

/*
Graph takes a grown tree and the names of the columns it was grown on (nil
to refer to them by index) and returns a DOT digraph with a node per tree
node and an edge from each comparison to its children, labeled "true" for
the left one and "false" for the right one.
*/
func Graph(t *tree.CART, names []string) (*gographviz.Graph, error) {
	if t.Bare() {
		return nil, tree.ErrBareTree
	}
	if names != nil && len(names) != t.FeatureCount() {
		return nil, fmt.Errorf("%w: %d names for %d columns", tree.ErrIncompatibleDataset, len(names), t.FeatureCount())
	}
	graphAst, err := gographviz.Parse([]byte(`digraph G {}`))
	if err != nil {
		return nil, err
	}
	graph := gographviz.NewGraph()
	if err = gographviz.Analyse(graphAst, graph); err != nil {
		return nil, err
	}
	nodes := t.Dump()
	ids := make(map[tree.BinaryNode]string, len(nodes))
	for i, n := range nodes {
		ids[n] = fmt.Sprintf("%d", i)
	}
	for _, n := range nodes {
		attrs := map[string]string{"label": label(n, names)}
		if _, ok := n.(tree.Leaf); ok {
			attrs["shape"] = "box"
		}
		if err = graph.AddNode(graphName, ids[n], attrs); err != nil {
			return nil, err
		}
	}
	for _, n := range nodes {
		c, ok := n.(*tree.Comparison)
		if !ok {
			continue
		}
		if c.Left == c.Right {
			err = graph.AddEdge(ids[c], ids[c.Left], true, map[string]string{"label": `"any"`})
			if err != nil {
				return nil, err
			}
			continue
		}
		if err = graph.AddEdge(ids[c], ids[c.Left], true, map[string]string{"label": `"true"`}); err != nil {
			return nil, err
		}
		if err = graph.AddEdge(ids[c], ids[c.Right], true, map[string]string{"label": `"false"`}); err != nil {
			return nil, err
		}
	}
	return graph, nil
}

// WriteDOT writes the DOT digraph of a grown tree onto an io.Writer.
func WriteDOT(t *tree.CART, names []string, w io.Writer) error {
	graph, err := Graph(t, names)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, graph.String())
	return err
}

func label(n tree.BinaryNode, names []string) string {
	var lines []string
	switch n := n.(type) {
	case *tree.Comparison:
		column := fmt.Sprintf("X[%d]", n.Column)
		if names != nil {
			column = escape(names[n.Column])
		}
		op := "&lt;"
		if n.Categorical() {
			op = "="
		}
		lines = append(lines,
			fmt.Sprintf("%s %s %s", column, op, escape(fmt.Sprintf("%v", n.Value))),
			fmt.Sprintf("purity increase = %.4g", n.PurityIncrease))
	case *tree.Best:
		lines = append(lines,
			fmt.Sprintf("class = %s", escape(n.Class())),
			fmt.Sprintf("probability = %.4g", n.ProbabilityOf(n.Class())),
			fmt.Sprintf("impurity = %.4g", n.Impurity()),
			fmt.Sprintf("samples = %d", n.Size()))
	case *tree.Average:
		lines = append(lines,
			fmt.Sprintf("value = %.4g", n.Mean()),
			fmt.Sprintf("variance = %.4g", n.Variance()),
			fmt.Sprintf("samples = %d", n.Size()))
	}
	return "<" + strings.Join(lines, "<br/>") + ">"
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string {
	return escaper.Replace(s)
}
