package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nao1215/sitescope/internal/app"
	"github.com/nao1215/sitescope/internal/codepanel"
	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/pipeline"
	"github.com/nao1215/sitescope/internal/report"
	"github.com/nao1215/sitescope/internal/synth"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze URL...",
		Short: "Analyze websites and print their reports",
		Long: `Analyze validates each URL, runs the five analysis stages and prints
the report.

Examples:
  # Print a text report
  sitescope analyze https://example.com

  # Only the security tab, as Markdown, into a file
  sitescope analyze --tab security -f markdown -o report.md https://example.com

  # Several sites at once, saved to the history database
  sitescope analyze --save https://example.com https://example.org

  # Copy the formatted CSS sample to the clipboard
  sitescope analyze --code css --reformat --copy https://example.com`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP(config.FlagFormat, "f", config.DefaultFormat, formatUsage())
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file instead of stdout (creates directories if needed)")
	cmd.Flags().Bool("tee", false,
		"With --output, also print the text report to stdout")
	cmd.Flags().String("tab", "",
		"Only print one tab: overview, technology, server, security, performance, seo, apis, assets or code")
	cmd.Flags().String("code", "",
		"Code sample for the code tab, --copy and --download: html, css or js")
	cmd.Flags().String(config.FlagLocale, config.DefaultLocale,
		"Locale used to case status labels")
	cmd.Flags().Bool("no-color", false,
		"Disable coloured status tags")
	cmd.Flags().IntP(config.FlagConcurrency, "n", config.DefaultConcurrency,
		"Number of URLs analyzed at once")
	cmd.Flags().Duration(config.FlagStageDelay, config.DefaultStageDelay,
		"Time each analysis stage stays active")
	cmd.Flags().Bool(config.FlagSave, false,
		"Save reports to the history database")

	// Code panel actions
	cmd.Flags().Bool("reformat", false,
		"Reformat the code sample before --copy or --download")
	cmd.Flags().Bool("copy", false,
		"Copy the code sample to the clipboard (requires a terminal with OSC 52 support)")
	cmd.Flags().String("download", "",
		"Save the code sample into this directory, or print it to stdout with -")

	return cmd
}

// codeActions are the code panel actions requested on the command line.
type codeActions struct {
	reformat bool
	copy     bool
	download string
}

func (c codeActions) any() bool {
	return c.reformat || c.copy || c.download != ""
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	var actions codeActions
	if actions.reformat, err = cmd.Flags().GetBool("reformat"); err != nil {
		return err
	}
	if actions.copy, err = cmd.Flags().GetBool("copy"); err != nil {
		return err
	}
	if actions.download, err = cmd.Flags().GetString("download"); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAnalyze(ctx, cfg, actions, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// analyzer holds what every analysis of one command shares.
type analyzer struct {
	cfg     *config.Config
	actions codeActions
	app     *app.App
	out     io.Writer
	errOut  io.Writer
	logger  *slog.Logger

	// interactive enables progress bars.
	interactive bool

	// mu serializes report output in batch mode.
	mu     sync.Mutex
	writer report.Writer
}

// runAnalyze analyzes cfg.Targets and writes their reports.
func runAnalyze(ctx context.Context, cfg *config.Config, actions codeActions, stdout, stderr io.Writer, logger *slog.Logger) error {
	targets := make([]model.Target, 0, len(cfg.Targets))
	for _, raw := range cfg.Targets {
		target, err := model.ParseTarget(raw)
		if err != nil {
			return fmt.Errorf("%q: %s: %w", raw, app.UserMessage(err), err)
		}
		targets = append(targets, target)
	}

	out, closeOut, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	writer, err := report.NewWriter(cfg.ReportFormat(), out, report.Options{
		Tab:     cfg.ResultTab(),
		Code:    cfg.CodeType(),
		Color:   useColor(cfg, out),
		Verbose: cfg.Verbose,
		Locale:  cfg.LocaleTag(),
		Version: getVersion(),
	})
	if err != nil {
		return err
	}
	if cfg.Tee && cfg.ReportFile != "" {
		writer = report.NewMultiWriter(writer, report.NewSimpleWriter(stdout,
			report.WithTab(cfg.ResultTab()),
			report.WithCode(cfg.CodeType()),
			report.WithColor(!cfg.NoColor && isTerminal(stdout)),
			report.WithLocale(cfg.LocaleTag()),
		))
	}

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithAnalysisOptions(pipeline.WithStageDelay(cfg.StageDelay)),
		app.WithClipboard(codepanel.NewOSC52Clipboard(os.Stdout)),
	}
	switch actions.download {
	case "":
	case "-":
		opts = append(opts, app.WithSink(codepanel.WriterSink{W: stdout}))
	default:
		opts = append(opts, app.WithSink(codepanel.DirSink{Dir: actions.download}))
	}
	if cfg.SaveHistory {
		store, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, app.WithRecorder(store))
	}

	a := &analyzer{
		cfg:         cfg,
		actions:     actions,
		app:         app.New(synth.New(synth.WithLogger(logger)), opts...),
		out:         out,
		errOut:      stderr,
		logger:      logger,
		interactive: isTerminal(stderr),
		writer:      writer,
	}

	if len(targets) == 1 || cfg.Concurrency == 1 {
		return a.runSequential(ctx, targets)
	}
	if actions.any() {
		fmt.Fprintln(stderr, "Warning: --reformat, --copy and --download are ignored when analyzing several URLs at once. Use -n 1 to apply them.")
	}
	return a.runBatch(ctx, targets)
}

// runSequential analyzes targets one after another through the app, so
// the tab, code and code panel options behave as in the web UI.
func (a *analyzer) runSequential(ctx context.Context, targets []model.Target) error {
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.analyzeOne(ctx, target); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) analyzeOne(ctx context.Context, target model.Target) error {
	st := app.NewState()
	var err error
	if tab := a.cfg.ResultTab(); tab != "" {
		if st, err = a.app.Dispatch(ctx, st, app.SelectTab(tab)); err != nil {
			return err
		}
	}
	if st, err = a.app.Dispatch(ctx, st, app.SelectCode(a.cfg.CodeType())); err != nil {
		return err
	}

	bar := a.stageBar(target)
	st, err = a.app.Analyze(ctx, st, target.URL(), func(e app.Event) {
		if bar != nil {
			bar.update(e.Progress)
		}
	})
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return fmt.Errorf("%s: %s: %w", target, st.Message, err)
	}
	a.notify(&st)

	if err := a.write(st.Report); err != nil {
		return err
	}
	return a.runCodeActions(ctx, st)
}

// runCodeActions applies --reformat, --copy and --download in that order.
func (a *analyzer) runCodeActions(ctx context.Context, st app.State) error {
	steps := []struct {
		enabled bool
		kind    app.EventKind
	}{
		{a.actions.reformat && (a.actions.copy || a.actions.download != ""), app.EventFormat},
		{a.actions.copy, app.EventCopy},
		{a.actions.download != "", app.EventDownload},
	}
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		next, err := a.app.Dispatch(ctx, st, app.Event{Kind: step.kind})
		st = next
		a.notify(&st)
		if err != nil {
			a.logger.Debug("code action failed", "action", step.kind.String(), "error", err)
		}
	}
	return nil
}

// runBatch analyzes targets concurrently with a progress bar over targets.
func (a *analyzer) runBatch(ctx context.Context, targets []model.Target) error {
	fmt.Fprintf(a.errOut, "Analyzing %d URLs (concurrency: %d)...\n", len(targets), a.cfg.Concurrency)
	startTime := time.Now()

	var bar *progressbar.ProgressBar
	if a.interactive {
		bar = newBar(a.errOut, len(targets), "[cyan]Analyzing[reset]")
	}

	synthesizer := synth.New(synth.WithLogger(a.logger))
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			p, _ := pipeline.NewAnalysisPipeline(synthesizer,
				pipeline.WithStageDelay(a.cfg.StageDelay),
				pipeline.WithAnalysisLogger(a.logger),
			)
			return p
		},
		pipeline.WithConcurrency(a.cfg.Concurrency),
		pipeline.WithBatchLogger(a.logger),
	)

	var failed int
	err := bp.ProcessBatchWithCallback(ctx, targets, func(run *pipeline.Run, index int) {
		a.mu.Lock()
		defer a.mu.Unlock()

		if bar != nil {
			_ = bar.Add(1)
		}
		if run.Err != nil || run.Report == nil {
			failed++
			fmt.Fprintf(a.errOut, "[%d/%d] %s: %s\n", index+1, len(targets), run.Target, app.MessageAnalysisFailed)
			return
		}
		if err := a.write(run.Report); err != nil {
			a.logger.Error("report failed", "target", run.Target.String(), "error", err)
		}
		if rec := a.app.Env().Recorder; rec != nil {
			if err := rec.Record(ctx, run.Report); err != nil {
				a.logger.Error("failed to save report", "target", run.Target.String(), "error", err)
			}
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Fprintf(a.errOut, "\nAnalysis completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, len(targets))
	}
	return nil
}

func (a *analyzer) write(rep *model.Report) error {
	if _, err := a.writer.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// notify prints and clears the pending notification of st.
func (a *analyzer) notify(st *app.State) {
	n := st.Notification
	if n == nil {
		return
	}
	st.Notification = nil

	c := color.New(color.FgCyan)
	switch n.Kind {
	case codepanel.KindSuccess:
		c = color.New(color.FgGreen)
	case codepanel.KindError:
		c = color.New(color.FgRed)
	}
	if a.cfg.NoColor || !a.interactive {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	c.Fprintln(a.errOut, n.Message) //nolint:errcheck
}

// stageBar is a progress bar over the five analysis stages.
type stageBar struct {
	bar *progressbar.ProgressBar
}

func (a *analyzer) stageBar(target model.Target) *stageBar {
	if !a.interactive {
		return nil
	}
	return &stageBar{bar: newBar(a.errOut, len(pipeline.Stages), target.Hostname())}
}

func (b *stageBar) update(p pipeline.Progress) {
	if p.Active != pipeline.StageNone {
		b.bar.Describe(p.Active.Label())
	}
	_ = b.bar.Set(p.Completed)
}

func (b *stageBar) finish() {
	_ = b.bar.Finish()
}

func newBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// openOutput returns the report destination: the file at path, created
// with owner-only permissions, or stdout when path is empty.
func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // user-provided output path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// useColor reports whether text output to w should be coloured.
func useColor(cfg *config.Config, w io.Writer) bool {
	return !cfg.NoColor && cfg.ReportFile == "" && isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
