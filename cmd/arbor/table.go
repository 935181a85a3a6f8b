package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// importance is the share of the purity increase achieved with a column.
type importance struct {
	column int
	value  float64
}

/*
renderImportances writes a table with the importance of each column onto w,
most important first.
*/
func renderImportances(w io.Writer, title string, names []string, importances []importance) {
	sort.SliceStable(importances, func(i, j int) bool {
		if importances[i].value != importances[j].value {
			return importances[i].value > importances[j].value
		}
		return importances[i].column < importances[j].column
	})
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Column", "Feature", "Importance"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Column", Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Name: "Feature", AlignHeader: text.AlignCenter, WidthMax: 40},
		{Name: "Importance", Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})
	for _, imp := range importances {
		name := "-"
		if imp.column < len(names) {
			name = names[imp.column]
		}
		t.AppendRow(table.Row{imp.column, name, fmt.Sprintf("%.4f", imp.value)})
	}
	t.Render()
}

/*
renderParameters writes a table with the given parameter names and values
onto w, in the given order.
*/
func renderParameters(w io.Writer, title string, parameters [][2]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Parameter", "Value"})
	for _, p := range parameters {
		t.AppendRow(table.Row{p[0], p[1]})
	}
	t.Render()
}
