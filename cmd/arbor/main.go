package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootCmdConfig struct {
	verbose bool
	logFile string
	logger  *zap.Logger
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{logger: zap.NewNop()}
	rootCmd := &cobra.Command{
		Use:   "arbor",
		Short: "arbor is a tool to grow decision trees and random forests",
		Long:  `A tool to grow classification and regression trees from your data and train random forests of them`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(config.verbose, config.logFile)
			if err != nil {
				return fmt.Errorf("setting up logs: %v", err)
			}
			config.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			config.logger.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log progress information on STDERR")
	rootCmd.PersistentFlags().StringVar(&(config.logFile), "log-file", "", "path to a file on which to keep rotated JSON logs")
	rootCmd.AddCommand(versionCmd(), growCmd(config), trainCmd(config))
	return rootCmd
}

func (rc *rootCmdConfig) Logf(format string, a ...interface{}) {
	rc.logger.Sugar().Infof(format, a...)
}

func (rc *rootCmdConfig) exit(code int, err error) {
	rc.logger.Error("command failed", zap.Int("code", code), zap.Error(err))
	rc.logger.Sync()
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}
