/*
Package config reads the hyperparameters of trees and forests from YAML.

A configuration file looks like this:

	tree:
	  kind: classification   # classification, extra or regression
	  max_depth: 12
	  max_leaf_size: 3
	  min_purity_increase: 0.0000001
	  max_features: 0
	  seed: 42
	forest:
	  estimators: 100
	  ratio: 0.6
	  workers: 4
	  seed: 42

Properties left out of the file keep their default values.
*/
package config

import (
	"fmt"
	"io/ioutil"

	"github.com/pbanos/arbor/forest"
	"github.com/pbanos/arbor/tree"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v2"
)

// Kinds of trees that can be configured.
const (
	Classification = "classification"
	Extra          = "extra"
	Regression     = "regression"
)

// Config holds the hyperparameters of a tree and of a forest of them.
type Config struct {
	Tree   TreeConfig   `yaml:"tree"`
	Forest ForestConfig `yaml:"forest"`
}

// TreeConfig holds the hyperparameters of a tree.
type TreeConfig struct {
	Kind              string  `yaml:"kind"`
	MaxDepth          int     `yaml:"max_depth"`
	MaxLeafSize       int     `yaml:"max_leaf_size"`
	MinPurityIncrease float64 `yaml:"min_purity_increase"`
	MaxFeatures       int     `yaml:"max_features"`
	// Seed is the seed of the tree's source of randomness, 0 for a
	// time based one.
	Seed int64 `yaml:"seed"`
}

// ForestConfig holds the hyperparameters of a forest.
type ForestConfig struct {
	Estimators int     `yaml:"estimators"`
	Ratio      float64 `yaml:"ratio"`
	Workers    int     `yaml:"workers"`
	// Seed is the seed of the forest's source of randomness, 0 for a
	// time based one.
	Seed int64 `yaml:"seed"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	tc := tree.DefaultConfig()
	return &Config{
		Tree: TreeConfig{
			Kind:              Classification,
			MaxDepth:          tc.MaxDepth,
			MaxLeafSize:       tc.MaxLeafSize,
			MinPurityIncrease: tc.MinPurityIncrease,
			MaxFeatures:       tc.MaxFeatures,
		},
		Forest: ForestConfig{
			Estimators: 10,
			Ratio:      0.6,
			Workers:    4,
		},
	}
}

/*
Parse takes a slice of bytes with a YAML configuration and returns the
default configuration overridden with its contents, or an error if it cannot
be parsed.
*/
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("parsing yml config: %v", err)
	}
	return c, nil
}

/*
Read takes a filepath string, reads its contents and uses Parse to return
the configuration in it or an error.
*/
func Read(filepath string) (*Config, error) {
	data, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading config yml file %s: %v", filepath, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config yml file %s: %w", filepath, err)
	}
	return c, nil
}

/*
Tree returns a CART built with the tree configuration, or an error wrapping
tree.ErrInvalidConfiguration if the configuration is not valid.
*/
func (c *Config) Tree() (*tree.CART, error) {
	tc := tree.Config{
		MaxDepth:          c.Tree.MaxDepth,
		MaxLeafSize:       c.Tree.MaxLeafSize,
		MinPurityIncrease: c.Tree.MinPurityIncrease,
		MaxFeatures:       c.Tree.MaxFeatures,
	}
	var t *tree.CART
	var err error
	switch c.Tree.Kind {
	case Classification, "":
		t, err = tree.NewClassificationTree(tc)
	case Extra:
		t, err = tree.NewExtraTreeClassifier(tc)
	case Regression:
		t, err = tree.NewRegressionTree(tc)
	default:
		return nil, fmt.Errorf("%w: unknown tree kind %q", tree.ErrInvalidConfiguration, c.Tree.Kind)
	}
	if err != nil {
		return nil, err
	}
	if c.Tree.Seed != 0 {
		t.Seed(c.Tree.Seed)
	}
	return t, nil
}

/*
Forest returns an untrained forest built with the forest configuration whose
trees are clones of the one built by Tree. Its training progress is logged
on the given logger.
*/
func (c *Config) Forest(logger *zap.Logger) (*forest.Forest, error) {
	base, err := c.Tree()
	if err != nil {
		return nil, err
	}
	opts := []forest.Option{forest.WithLogger(logger)}
	if c.Forest.Seed != 0 {
		opts = append(opts, forest.WithSeed(c.Forest.Seed))
	}
	return forest.New(base, c.Forest.Estimators, c.Forest.Ratio, c.Forest.Workers, opts...)
}
