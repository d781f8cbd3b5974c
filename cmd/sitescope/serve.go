package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescope/internal/app"
	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/pipeline"
	"github.com/nao1215/sitescope/internal/server"
	"github.com/nao1215/sitescope/internal/synth"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI",
		Long: `Serve starts the browser UI: a URL form with example buttons, the
analysis progress, the result tabs and the code panel.

Examples:
  # Listen on the default address
  sitescope serve

  # Listen on all interfaces and keep every report
  sitescope serve --listen :8080 --save`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP(config.FlagListen, "l", config.DefaultListenAddr,
		"Address to listen on")
	cmd.Flags().Duration(config.FlagStageDelay, config.DefaultStageDelay,
		"Time each analysis stage stays active")
	cmd.Flags().Bool(config.FlagSave, false,
		"Save reports to the history database")
	cmd.Flags().Duration("shutdown-timeout", config.DefaultShutdownTimeout,
		"Time allowed for graceful shutdown")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithAnalysisOptions(pipeline.WithStageDelay(cfg.StageDelay)),
	}
	if cfg.SaveHistory {
		store, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, app.WithRecorder(store))
	}

	srv, err := server.New(app.New(synth.New(synth.WithLogger(logger)), opts...),
		server.WithLogger(logger),
		server.WithExamples(cfg.Examples...),
		server.WithVersion(getVersion()),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "sitescope web UI: http://%s/\n", cfg.ListenAddr)
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}
