// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-shade/pkg/shade"
)

var envReplacer = strings.NewReplacer("-", "_")

// newAnalyzeCmd creates the "analyze" command.
func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze ARTIFACT...",
		Short: "Analyze artifacts into intermediate directories",
		Long:  "Analyze reads each JAR or class directory, renames its classes and stores the result under the work directory.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := shade.New(buildConfig(cmd.ErrOrStderr()))
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			dirs, err := s.Analyze(ctx, args)
			if err != nil {
				return err
			}
			for _, d := range dirs {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}

// newAssembleCmd creates the "assemble" command.
func newAssembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble DIR...",
		Short: "Assemble the archive from intermediate directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShade(cmd, args, func(ctx context.Context, s shade.Shader) (*shade.Result, error) {
				return s.Assemble(ctx, args)
			})
		},
	}
	addAssembleFlags(cmd.Flags())
	return cmd
}

// newRunCmd creates the "run" command.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run ARTIFACT...",
		Short: "Analyze artifacts and assemble the archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShade(cmd, args, func(ctx context.Context, s shade.Shader) (*shade.Result, error) {
				return s.Run(ctx, args)
			})
		},
	}
	addAssembleFlags(cmd.Flags())
	return cmd
}

func addAssembleFlags(flags *pflag.FlagSet) {
	flags.StringP("output", "o", "", "Archive path (required)")
	flags.String("receipt", "", "Build receipt file (required)")
	flags.String("receipt-path", "build-receipt.properties", "Archive path of the build receipt")
	flags.String("report-dir", "", "Directory for report files")
	flags.Bool("json", false, "Print the result as JSON instead of a summary")
	flags.StringSlice("publish-dir", nil, "Directory that receives a copy of the archive and report")
	flags.String("s3-endpoint", "", "S3 endpoint for publishing")
	flags.String("s3-region", "", "S3 region")
	flags.String("s3-bucket", "", "S3 bucket")
	flags.String("s3-prefix", "", "S3 key prefix")
	flags.Bool("s3-ssl", true, "Use TLS for S3")
}

// buildConfig collects the Config from flags, environment and config file.
func buildConfig(summary io.Writer) shade.Config {
	cfg := shade.Config{
		PolicyFile:       viper.GetString("policy"),
		ShadowPackage:    viper.GetString("shadow-package"),
		KeepPackages:     viper.GetStringSlice("keep"),
		UnshadedPackages: viper.GetStringSlice("unshaded"),
		IgnoredPackages:  viper.GetStringSlice("ignored"),
		DropIgnored:      viper.GetBool("drop-ignored"),
		NoRelocate:       viper.GetBool("no-relocate"),
		WorkDir:          viper.GetString("workdir"),
		Format:           viper.GetString("format"),
		Workers:          viper.GetInt("workers"),
		Output:           viper.GetString("output"),
		ReceiptFile:      viper.GetString("receipt"),
		ReceiptPath:      viper.GetString("receipt-path"),
		ReportDir:        viper.GetString("report-dir"),
		PublishDirs:      viper.GetStringSlice("publish-dir"),
		Summary:          summary,
	}
	if bucket := viper.GetString("s3-bucket"); bucket != "" {
		cfg.S3 = &shade.S3Config{
			Endpoint:  viper.GetString("s3-endpoint"),
			Region:    viper.GetString("s3-region"),
			AccessKey: viper.GetString("s3-access-key"),
			SecretKey: viper.GetString("s3-secret-key"),
			Bucket:    bucket,
			Prefix:    viper.GetString("s3-prefix"),
			UseSSL:    viper.GetBool("s3-ssl"),
		}
	}
	return cfg
}

// runShade builds a Shader, runs op and prints the result. Missing classes
// are diagnostics: they are printed but do not fail the command.
func runShade(cmd *cobra.Command, args []string, op func(context.Context, shade.Shader) (*shade.Result, error)) error {
	// Assemble and run share flag names, so bind the running command's.
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	var summary io.Writer = cmd.OutOrStdout()
	if asJSON {
		summary = nil
	}
	s, err := shade.New(buildConfig(summary))
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := op(ctx, s)
	if asJSON && result != nil {
		printResult(cmd.OutOrStdout(), result)
	}
	return err
}

// printResult outputs the result as JSON.
func printResult(w io.Writer, result *shade.Result) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(out))
}
