package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pbanos/arbor/config"
	"github.com/pbanos/arbor/tree"
	"github.com/pbanos/arbor/tree/graphviz"
	"github.com/pbanos/arbor/tree/json"
	"github.com/spf13/cobra"
)

type growCmdConfig struct {
	*inputConfig
	dataInput   string
	configInput string
	output      string
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{inputConfig: &inputConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a set of data",
		Long:  `Grow a classification or regression tree from a set of data to predict a certain column.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				config.exit(1, err)
			}
			c, err := config.read()
			if err != nil {
				config.exit(2, err)
			}
			t, err := c.Tree()
			if err != nil {
				config.exit(3, err)
			}
			trainingSet, names, err := config.readLabeled(context.Background(), config.dataInput)
			if err != nil {
				config.exit(4, fmt.Errorf("reading training set: %w", err))
			}
			config.Logf("Growing %s tree from a set with %d samples and %d columns to predict %s ...", c.Tree.Kind, trainingSet.NumRows(), trainingSet.NumColumns(), config.label)
			if err = t.Grow(trainingSet); err != nil {
				config.exit(5, fmt.Errorf("growing the tree: %w", err))
			}
			config.Logf("Done: height %d, balance %d, %d nodes", t.Height(), t.Balance(), len(t.Dump()))
			config.Logf("\n%v", t)
			importances := make([]importance, 0, t.FeatureCount())
			for _, imp := range t.FeatureImportances() {
				importances = append(importances, importance{imp.Column, imp.Value})
			}
			renderImportances(os.Stderr, "FEATURE IMPORTANCES", names, importances)
			if err = outputTree(config.output, t, names); err != nil {
				config.exit(6, err)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to use to grow the tree (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.configInput), "config", "c", "", "path to a YML file with the tree hyperparameters (defaults to a classification tree limited only by purity)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the grown tree will be written in JSON format, or in DOT format if it ends in .dot (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "", "name of the column the grown tree should predict (required)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "name of the table or collection holding the data on database inputs")
	cmd.PersistentFlags().BoolVar(&(config.categoricalLabels), "categorical-labels", false, "treat numeric labels on CSV inputs as classes")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	return nil
}

func (gcc *growCmdConfig) read() (*config.Config, error) {
	if gcc.configInput == "" {
		return config.Default(), nil
	}
	gcc.Logf("Reading configuration from %s...", gcc.configInput)
	return config.Read(gcc.configInput)
}

func outputTree(outputPath string, t *tree.CART, names []string) error {
	var f *os.File
	var err error
	if outputPath == "" {
		f = os.Stdout
	} else {
		f, err = os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
	}
	if strings.HasSuffix(outputPath, ".dot") {
		return graphviz.WriteDOT(t, names, f)
	}
	return json.WriteJSONTree(t, names, f)
}
