package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pbanos/arbor/config"
	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/dataset/csv"
	"github.com/pbanos/arbor/forest"
	"github.com/spf13/cobra"
)

type trainCmdConfig struct {
	*inputConfig
	dataInput    string
	testInput    string
	predictInput string
	configInput  string
	estimators   int
	ratio        float64
	workers      int
	seed         int64
}

func trainCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &trainCmdConfig{inputConfig: &inputConfig{rootCmdConfig: rootConfig}}
	return config.command()
}

func (tcc *trainCmdConfig) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a random forest from a set of data",
		Long:  `Train a random forest of classification trees from a set of data to predict a certain column, and optionally test it against another set or predict the class of new samples.`,
		Run: func(cmd *cobra.Command, args []string) {
			if code, err := tcc.run(cmd); err != nil {
				tcc.exit(code, err)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(tcc.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to use to train the forest (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(tcc.testInput), "test", "t", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with data to test the trained forest against")
	cmd.PersistentFlags().StringVarP(&(tcc.predictInput), "predict", "p", "", "path to a CSV file with samples whose class the trained forest should predict, printed one per line on STDOUT")
	cmd.PersistentFlags().StringVarP(&(tcc.configInput), "config", "c", "", "path to a YML file with the tree and forest hyperparameters")
	cmd.PersistentFlags().StringVarP(&(tcc.label), "label", "l", "", "name of the column the forest should predict (required)")
	cmd.PersistentFlags().StringVar(&(tcc.table), "table", "samples", "name of the table or collection holding the data on database inputs")
	cmd.PersistentFlags().BoolVar(&(tcc.categoricalLabels), "categorical-labels", false, "treat numeric labels on CSV inputs as classes")
	cmd.PersistentFlags().IntVar(&(tcc.estimators), "estimators", 0, "number of trees in the forest (overrides the configuration)")
	cmd.PersistentFlags().Float64Var(&(tcc.ratio), "ratio", 0, "share of the training samples drawn for each tree (overrides the configuration)")
	cmd.PersistentFlags().IntVar(&(tcc.workers), "workers", 0, "number of trees grown simultaneously (overrides the configuration)")
	cmd.PersistentFlags().Int64Var(&(tcc.seed), "seed", 0, "seed for the forest's source of randomness (overrides the configuration)")
	return cmd
}

/*
run trains the forest and, when requested, tests it and predicts with it. It
returns the exit code for the step that failed along with its error.
*/
func (tcc *trainCmdConfig) run(cmd *cobra.Command) (int, error) {
	err := tcc.Validate()
	if err != nil {
		return 1, err
	}
	c, err := tcc.read(cmd)
	if err != nil {
		return 2, err
	}
	f, err := c.Forest(tcc.logger)
	if err != nil {
		return 3, err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	trainingSet, names, err := tcc.readLabeled(ctx, tcc.dataInput)
	if err != nil {
		return 4, fmt.Errorf("reading training set: %w", err)
	}
	renderParameters(os.Stderr, "FOREST PARAMETERS", [][2]interface{}{
		{"tree kind", c.Tree.Kind},
		{"max depth", c.Tree.MaxDepth},
		{"max leaf size", c.Tree.MaxLeafSize},
		{"min purity increase", c.Tree.MinPurityIncrease},
		{"max features", c.Tree.MaxFeatures},
		{"estimators", c.Forest.Estimators},
		{"ratio", c.Forest.Ratio},
		{"workers", c.Forest.Workers},
		{"samples", trainingSet.NumRows()},
		{"columns", trainingSet.NumColumns()},
	})
	if err = f.Train(ctx, trainingSet); err != nil {
		return 5, fmt.Errorf("training the forest: %w", err)
	}
	importances := make([]importance, 0, f.FeatureCount())
	for column, value := range f.FeatureImportances() {
		importances = append(importances, importance{column, value})
	}
	renderImportances(os.Stderr, "FOREST FEATURE IMPORTANCES", names, importances)
	if tcc.testInput != "" {
		testSet, _, err := tcc.readLabeled(ctx, tcc.testInput)
		if err != nil {
			return 6, fmt.Errorf("reading test set: %w", err)
		}
		accuracy, err := test(f, testSet)
		if err != nil {
			return 7, fmt.Errorf("testing the forest: %w", err)
		}
		fmt.Printf("%d samples tested: accuracy %.4f\n", testSet.NumRows(), accuracy)
	}
	if tcc.predictInput != "" {
		tcc.Logf("Reading samples to predict from CSV file %s...", tcc.predictInput)
		samples, sampleNames, err := csv.ReadUnlabeledFromFilePath(tcc.predictInput)
		if err != nil {
			return 8, fmt.Errorf("reading samples to predict: %w", err)
		}
		if err = predict(os.Stdout, f, names, samples, sampleNames); err != nil {
			return 9, fmt.Errorf("predicting: %w", err)
		}
	}
	return 0, nil
}

func (tcc *trainCmdConfig) Validate() error {
	if tcc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	return nil
}

// read returns the configuration file contents overridden by the flags set
// on the command line.
func (tcc *trainCmdConfig) read(cmd *cobra.Command) (*config.Config, error) {
	c := config.Default()
	if tcc.configInput != "" {
		tcc.Logf("Reading configuration from %s...", tcc.configInput)
		var err error
		c, err = config.Read(tcc.configInput)
		if err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("estimators") {
		c.Forest.Estimators = tcc.estimators
	}
	if flags.Changed("ratio") {
		c.Forest.Ratio = tcc.ratio
	}
	if flags.Changed("workers") {
		c.Forest.Workers = tcc.workers
	}
	if flags.Changed("seed") {
		c.Forest.Seed = tcc.seed
	}
	return c, nil
}

// test returns the share of samples of the test set whose label is the
// class predicted by the forest.
func test(f *forest.Forest, testSet *dataset.Labeled) (float64, error) {
	if testSet.Empty() {
		return 0, dataset.ErrEmptyDataset
	}
	predictions, err := f.Predict(testSet)
	if err != nil {
		return 0, err
	}
	var hits int
	for i, p := range predictions {
		if p == dataset.Class(testSet.Label(i)) {
			hits++
		}
	}
	return float64(hits) / float64(len(predictions)), nil
}

/*
predict writes onto w the class predicted by the forest for each of the
given samples, one per line. The columns of the samples are matched by name
with the ones the forest was trained on, so they may come in any order and
columns the forest does not know, such as the label, are ignored.
*/
func predict(w io.Writer, f *forest.Forest, names []string, samples *dataset.Unlabeled, sampleNames []string) error {
	aligned, err := alignColumns(samples, sampleNames, names)
	if err != nil {
		return err
	}
	predictions, err := f.Predict(aligned)
	if err != nil {
		return err
	}
	for _, p := range predictions {
		if _, err = fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

// alignColumns returns the samples of d with the columns named in want, in
// that order.
func alignColumns(d *dataset.Unlabeled, got, want []string) (*dataset.Unlabeled, error) {
	positions := make(map[string]int, len(got))
	for i, n := range got {
		positions[n] = i
	}
	index := make([]int, len(want))
	for i, n := range want {
		j, ok := positions[n]
		if !ok {
			return nil, fmt.Errorf("%w: samples have no column %s", dataset.ErrInconsistentSamples, n)
		}
		index[i] = j
	}
	samples := make([]dataset.Sample, d.NumRows())
	for i, s := range d.Samples() {
		sample := make(dataset.Sample, len(index))
		for k, j := range index {
			sample[k] = s[j]
		}
		samples[i] = sample
	}
	return dataset.NewUnlabeled(samples)
}
