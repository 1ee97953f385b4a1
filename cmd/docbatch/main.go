// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docbatch CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/docbatch/internal/logging"
	"github.com/pdiddy/docbatch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the merged configuration, resolved before any subcommand runs.
	cfg types.Config

	// logger is built from cfg.Log.
	logger = zap.NewNop()

	// configErr holds a config file that exists but could not be read.
	configErr error
)

// rootCmd is the base command for the docbatch CLI.
var rootCmd = &cobra.Command{
	Use:   "docbatch",
	Short: "Batch-convert document trees to plain text and UTF-8",
	Long: `docbatch walks directory trees of documentation and converts them in a
single pass. extract writes the text of PDF files to sidecar text files;
recode detects the legacy encoding of source and markup files and rewrites
them as UTF-8, in place or into a mirrored directory tree.

Per-file problems are logged and counted but never change the exit code.
Only setup errors, such as an unreadable root directory, exit non-zero.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		loaded, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	setDefaults(viper.GetViper())
	cobra.OnInitialize(initConfig)

	defaults := types.DefaultConfig()
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docbatch.yaml or ~/.config/docbatch/docbatch.yaml)")
	rootCmd.PersistentFlags().String("log-level", defaults.Log.Level, "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", defaults.Log.Format, "log format: console or json")
	rootCmd.PersistentFlags().String("journal", "", "record runs in this SQLite database (disabled when empty)")

	bindFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	bindFlag("journal.path", rootCmd.PersistentFlags().Lookup("journal"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: could not load .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configErr = readConfig(viper.GetViper(), cfgFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
