package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/database"
	"github.com/nao1215/sitescope/internal/log"
	"github.com/nao1215/sitescope/internal/report"
)

// lookupFlag finds a flag of cmd, including the root's persistent flags
// when cmd has not been executed through the root.
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	return cmd.Root().PersistentFlags().Lookup(name)
}

// flagChanged reports whether the flag was given on the command line.
func flagChanged(cmd *cobra.Command) func(string) bool {
	return func(name string) bool {
		f := lookupFlag(cmd, name)
		return f != nil && f.Changed
	}
}

// flagValue returns the flag's value when it was given on the command line.
func flagValue(cmd *cobra.Command, name string) (string, bool) {
	f := lookupFlag(cmd, name)
	if f == nil || !f.Changed {
		return "", false
	}
	return f.Value.String(), true
}

// buildConfig creates a Config from the defaults, the config file and the
// flags of cmd, in increasing precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	var err error

	if f := lookupFlag(cmd, "config"); f != nil {
		cfg.ConfigFilePath = f.Value.String()
	}
	if _, err := cfg.Load(flagChanged(cmd)); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	stringFlags := map[string]*string{
		config.FlagFormat:  &cfg.Format,
		config.FlagLocale:  &cfg.Locale,
		config.FlagListen:  &cfg.ListenAddr,
		config.FlagHistory: &cfg.HistoryLocation,
		"log-format":       &cfg.LogFormat,
		"output":           &cfg.ReportFile,
		"tab":              &cfg.Tab,
		"code":             &cfg.Code,
	}
	for name, dst := range stringFlags {
		if v, ok := flagValue(cmd, name); ok {
			*dst = v
		}
	}

	boolFlags := map[string]*bool{
		"verbose":       &cfg.Verbose,
		"no-color":      &cfg.NoColor,
		"tee":           &cfg.Tee,
		config.FlagSave: &cfg.SaveHistory,
	}
	for name, dst := range boolFlags {
		if v, ok := flagValue(cmd, name); ok {
			if *dst, err = strconv.ParseBool(v); err != nil {
				return nil, fmt.Errorf("invalid --%s: %w", name, err)
			}
		}
	}

	if v, ok := flagValue(cmd, config.FlagConcurrency); ok {
		if cfg.Concurrency, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", config.FlagConcurrency, err)
		}
	}
	durationFlags := map[string]*time.Duration{
		config.FlagStageDelay: &cfg.StageDelay,
		"shutdown-timeout":    &cfg.ShutdownTimeout,
	}
	for name, dst := range durationFlags {
		if v, ok := flagValue(cmd, name); ok {
			if *dst, err = time.ParseDuration(v); err != nil {
				return nil, fmt.Errorf("invalid --%s: %w", name, err)
			}
		}
	}

	cfg.Targets = args

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// setupLogger creates the secure logger for cfg and makes it the default.
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := log.New(os.Stderr, cfg.LogFormat, cfg.Verbose)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// openStore opens the history database named by cfg.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*database.Store, error) {
	store, err := database.OpenLocation(ctx, cfg.HistoryLocation, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	logger.Debug("history opened", "location", store.Location())
	return store, nil
}

// commandContext returns the command's context, or Background when the
// command is run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// formatUsage is the help text of the --format flags.
func formatUsage() string {
	names := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		names = append(names, string(f))
	}
	return "Report format: " + strings.Join(names, ", ")
}
