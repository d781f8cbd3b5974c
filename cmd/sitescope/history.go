package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/database"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/report"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved reports",
		Long: `History reads the reports saved with "sitescope analyze --save" or
"sitescope serve --save".

Examples:
  # List every analyzed domain
  sitescope history list

  # List the saved runs of a domain
  sitescope history runs example.com

  # Print a saved report by id, or the latest one of a domain
  sitescope history show 12
  sitescope history show -f markdown example.com

  # Show what changed between the two latest runs
  sitescope history compare example.com`,
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryRunsCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryCompareCmd())

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List analyzed domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHistory(cmd, func(ctx context.Context, _ *config.Config, store *database.Store) error {
				return listDomains(ctx, cmd.OutOrStdout(), store)
			})
		},
	}
}

func newHistoryRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs DOMAIN",
		Short: "List the saved runs of a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, func(ctx context.Context, _ *config.Config, store *database.Store) error {
				return listRuns(ctx, cmd.OutOrStdout(), store, args[0])
			})
		},
	}
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID|DOMAIN",
		Short: "Print a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, func(ctx context.Context, cfg *config.Config, store *database.Store) error {
				return showReport(ctx, cmd.OutOrStdout(), cfg, store, args[0])
			})
		},
	}
	cmd.Flags().StringP(config.FlagFormat, "f", config.DefaultFormat, formatUsage())
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().String("tab", "", "Only print one tab")
	cmd.Flags().String("code", "", "Code sample for the code tab: html, css or js")
	cmd.Flags().String(config.FlagLocale, config.DefaultLocale, "Locale used to case status labels")
	cmd.Flags().Bool("no-color", false, "Disable coloured status tags")
	return cmd
}

func newHistoryCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare DOMAIN",
		Short: "Show what changed between the two latest runs of a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			return withHistory(cmd, func(ctx context.Context, _ *config.Config, store *database.Store) error {
				cmp, err := store.Compare(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return outputComparisonJSON(cmd.OutOrStdout(), cmp)
				}
				outputComparisonText(cmd.OutOrStdout(), args[0], cmp)
				return nil
			})
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output the comparison as JSON")
	return cmd
}

// withHistory opens the existing history database and runs fn with it.
func withHistory(cmd *cobra.Command, fn func(context.Context, *config.Config, *database.Store) error) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	store, err := database.OpenLocation(ctx, cfg.HistoryLocation, database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseMissing) {
		return fmt.Errorf("no history yet: run 'sitescope analyze --save <url>' first (%w)", err)
	}
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()
	logger.Debug("history opened", "location", store.Location())

	return fn(ctx, cfg, store)
}

func listDomains(ctx context.Context, w io.Writer, store *database.Store) error {
	domains, err := store.ListDomains(ctx)
	if err != nil {
		return err
	}
	if len(domains) == 0 {
		fmt.Fprintln(w, "No saved reports.")
		fmt.Fprintln(w, "\nUse 'sitescope analyze --save <url>' to save one.")
		return nil
	}

	fmt.Fprintf(w, "Analyzed domains (%d):\n\n", len(domains))
	for _, domain := range domains {
		fmt.Fprintf(w, "  • %s\n", domain)
	}
	fmt.Fprintln(w, "\nUse 'sitescope history runs <domain>' to see the saved runs.")
	return nil
}

func listRuns(ctx context.Context, w io.Writer, store *database.Store, domain string) error {
	runs, err := store.History(ctx, domain)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(w, "No saved runs for %s\n", domain)
		return nil
	}

	fmt.Fprintf(w, "Saved runs for %s (%d):\n\n", domain, len(runs))
	fmt.Fprintf(w, "  %-6s  %-20s  %-10s  %s\n", "ID", "Date", "Digest", "Summary")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 64))
	for _, meta := range runs {
		fmt.Fprintf(w, "  %-6d  %-20s  %-10s  %s\n",
			meta.ID,
			meta.AnalyzedAt.Format(historyTimeLayout),
			shortDigest(meta.Digest),
			formatSummary(meta.Summary),
		)
	}
	fmt.Fprintln(w, "\nUse 'sitescope history show <id>' to print a run.")
	return nil
}

// formatSummary abbreviates the item counts by tone.
func formatSummary(s model.Summary) string {
	if s.Total == 0 {
		return "N/A"
	}
	return fmt.Sprintf("total:%d ok:%d warn:%d err:%d info:%d",
		s.Total, s.Positive, s.Caution, s.Negative, s.Neutral)
}

func shortDigest(digest string) string {
	if len(digest) > 10 {
		return digest[:10]
	}
	return digest
}

// showReport prints the report with the given id, or the latest report of
// the domain when ref is not a number.
func showReport(ctx context.Context, stdout io.Writer, cfg *config.Config, store *database.Store, ref string) error {
	var (
		rep *model.Report
		err error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		rep, err = store.Get(ctx, id)
	} else {
		rep, err = store.Latest(ctx, ref)
	}
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("no saved report for %q", ref)
	}
	if err != nil {
		return err
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
		Locale:  cfg.LocaleTag(),
		Version: getVersion(),
	})
	if err != nil {
		return err
	}
	_, err = writer.Write(rep)
	return err
}

func outputComparisonJSON(w io.Writer, cmp *database.Comparison) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cmp)
}

func outputComparisonText(w io.Writer, domain string, cmp *database.Comparison) {
	fmt.Fprintf(w, "Report Comparison: %s\n", domain)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "\nPrevious run: #%d %s\n", cmp.Older.ID, cmp.Older.AnalyzedAt.Format(historyTimeLayout))
	fmt.Fprintf(w, "Current run:  #%d %s\n", cmp.Newer.ID, cmp.Newer.AnalyzedAt.Format(historyTimeLayout))

	if len(cmp.Changes) == 0 {
		fmt.Fprintln(w, "\nNo changes.")
		return
	}

	fmt.Fprintf(w, "\nChanges (%d):\n", len(cmp.Changes))
	for _, c := range cmp.Changes {
		fmt.Fprintf(w, "  %s %s / %s: %s%s\n", changeMarker(c.Kind), c.Tab.Title(), c.Key, c.Name, statusChange(c))
	}
}

func changeMarker(kind database.ChangeKind) string {
	switch kind {
	case database.ChangeAdded:
		return "[+]"
	case database.ChangeRemoved:
		return "[-]"
	default:
		return "[~]"
	}
}

// statusChange describes a status transition, if any.
func statusChange(c database.Change) string {
	switch {
	case c.Before != nil && c.After != nil && c.Before.Status != c.After.Status:
		return fmt.Sprintf(" (%s -> %s)", c.Before.Status, c.After.Status)
	case c.After != nil && c.After.Status != "":
		return fmt.Sprintf(" (%s)", c.After.Status)
	case c.Before != nil && c.Before.Status != "":
		return fmt.Sprintf(" (%s)", c.Before.Status)
	default:
		return ""
	}
}
