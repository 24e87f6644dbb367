// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command go-shade builds a minimized, shaded JAR from a set of input
// artifacts.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "go-shade",
		Short: "Minimizing JAR shader",
		Long: "go-shade renames third-party classes under a private package, keeps only the classes " +
			"reachable from the configured entry points, and writes them to a single archive.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(viper.GetString("log-level"))
		},
	}

	// Global flags.
	flags := rootCmd.PersistentFlags()
	flags.String("policy", "", "YAML rename policy file")
	flags.String("shadow-package", "", "Package shadowed classes are moved under")
	flags.StringSlice("keep", nil, "Keep package or class (entry point root, never renamed)")
	flags.StringSlice("unshaded", nil, "Unshaded package or class (never renamed)")
	flags.StringSlice("ignored", nil, "Ignored package or class (never an entry point)")
	flags.Bool("drop-ignored", false, "Drop ignored classes instead of letting reachability keep them")
	flags.Bool("no-relocate", false, "Keep every class in its original namespace (minify only)")
	flags.String("workdir", "build/go-shade", "Root of intermediate directories")
	flags.String("format", "json", "Intermediate encoding (json or cbor)")
	flags.Int("workers", 0, "Parallel analyses (0 = number of CPUs)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	for _, name := range []string{
		"policy", "shadow-package", "keep", "unshaded", "ignored", "drop-ignored", "no-relocate",
		"workdir", "format", "workers", "log-level",
	} {
		viper.BindPFlag(name, flags.Lookup(name))
	}

	// Env vars: GO_SHADE_SHADOW_PACKAGE, GO_SHADE_S3_BUCKET, etc.
	godotenv.Load() // Ignore error; .env is optional.
	viper.SetEnvPrefix("GO_SHADE")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".go-shade")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newAssembleCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// setupLogging installs a text handler on stderr at the given level.
func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print go-shade version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "go-shade %s\n", version)
		},
	}
}
