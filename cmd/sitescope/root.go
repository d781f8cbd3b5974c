package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/log"
)

// NewRootCmd creates the root command for sitescope.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescope",
		Short: "Simulated website analysis reports",
		Long: `sitescope turns a website URL into an analysis report covering the
technology stack, server, security, performance, SEO, APIs and assets,
together with generated HTML, CSS and JavaScript samples.

All findings are simulated: no request is sent to the website.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", log.FormatText, "Log format: text or json")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .sitescope in the current directory, "+config.XDGConfigFile+" in the XDG config directory, or .sitescope in the home directory)")
	cmd.PersistentFlags().String(config.FlagHistory, "",
		"History database: a directory for SQLite or a postgres:// DSN (default: XDG data directory)")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
