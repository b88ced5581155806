// Package main provides the profile assistant CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spherical-ai/profile-assistant/internal/app"
	"github.com/spherical-ai/profile-assistant/internal/config"
	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	noColor    bool
	verbose    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "assistant-cli",
	Short: "Ask the profile assistant questions and inspect its knowledge base",
	Long: `assistant-cli runs the profile assistant locally against the configured
knowledge base.

Use this tool to:
- Ask questions and see which stage answered
- Trace how a question is routed through the matchers
- Score role fit
- Evaluate a batch of questions against expected stages
- Check knowledge sources and document quality

All commands support --json for automation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if noColor {
			color.NoColor = true
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      logFormat,
			Output:      os.Stderr,
			ServiceName: "assistant-cli",
			NoColor:     noColor,
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newExplainCmd())
	rootCmd.AddCommand(newFitCmd())
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newKBCmd())
	rootCmd.AddCommand(newProjectsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildApp wires the assistant for one command run. Log lines carry the
// command name as their operation.
func buildApp(ctx context.Context, op string) (*app.App, error) {
	a, err := app.Build(ctx, cfg, logger.WithOperation(op))
	if err != nil {
		return nil, fmt.Errorf("build assistant: %w", err)
	}
	return a, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputJSON {
				return printJSON(map[string]string{"version": version, "commit": commit})
			}
			fmt.Printf("assistant-cli %s (%s)\n", version, commit)
			return nil
		},
	}
}
