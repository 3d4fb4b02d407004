package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/projlint/projlint/internal/config"
	pkgio "github.com/projlint/projlint/pkg/io"
	"github.com/projlint/projlint/pkg/manifest"
	"github.com/projlint/projlint/pkg/observability"
	"github.com/projlint/projlint/pkg/store"
)

// lintOpts holds the command-line flags for the lint command.
type lintOpts struct {
	format    string // output format: text or json
	strict    bool   // treat warnings as errors
	noHistory bool   // skip recording the run
	output    string // report file path (stdout if empty)
}

// newLintCmd creates the lint command.
func newLintCmd() *cobra.Command {
	opts := lintOpts{format: "text"}

	cmd := &cobra.Command{
		Use:   "lint <pyproject.toml>",
		Short: "Validate a pyproject.toml manifest",
		Long: `Validate a pyproject.toml manifest against the project schema and
packaging conventions.

Examples:
  projlint lint pyproject.toml
  projlint lint --format json pyproject.toml
  projlint lint --strict pyproject.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runLint(c, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format (text|json)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat warnings as errors")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record this run in the history database")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to a file (stdout if empty)")

	return cmd
}

func runLint(c *cobra.Command, path string, opts *lintOpts) error {
	ctx := c.Context()
	logger := loggerFromContext(ctx)

	observability.Lint().OnLintStart(ctx, path)
	start := time.Now()

	report, err := manifest.LintFile(path)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	observability.Lint().OnLintComplete(ctx, path, report.Errors(), report.Warnings(), duration)

	if !opts.noHistory {
		if err := recordRun(report, duration); err != nil {
			logger.Warnf("Could not record lint run: %v", err)
		}
	}

	switch opts.format {
	case "json":
		if opts.output != "" {
			if err := pkgio.ExportReport(report, opts.output); err != nil {
				return err
			}
			printSuccess("Report written")
			printFile(opts.output)
		} else if err := pkgio.WriteReport(report, os.Stdout); err != nil {
			return err
		}
	case "text":
		printReport(report)
	default:
		return fmt.Errorf("unknown format %q (expected text or json)", opts.format)
	}

	if report.HasErrors() {
		return fmt.Errorf("%d error(s) found", report.Errors())
	}
	if opts.strict && report.Warnings() > 0 {
		return fmt.Errorf("%d warning(s) found in strict mode", report.Warnings())
	}
	return nil
}

// printReport renders a lint report as styled terminal output.
func printReport(r *manifest.Report) {
	fmt.Println(StyleTitle.Render("Lint Report"))
	printKeyValue("Manifest", r.ManifestPath)
	printKeyValue("Issues", num.Sprintf("%d", len(r.Issues)))
	fmt.Println()

	for _, issue := range r.Issues {
		loc := issue.Path
		if loc == "" {
			loc = "manifest"
		}
		switch issue.Severity {
		case manifest.SeverityError:
			printError("%s %s: %s", StyleDim.Render("["+string(issue.Code)+"]"), loc, issue.Message)
		default:
			printWarning("%s %s: %s", StyleDim.Render("["+string(issue.Code)+"]"), loc, issue.Message)
		}
	}

	if len(r.Issues) == 0 {
		printSuccess("No issues found")
		return
	}
	fmt.Println()
	printDetail("%s", num.Sprintf("%d errors · %d warnings", r.Errors(), r.Warnings()))
}

// recordRun appends the report to the configured history database.
func recordRun(r *manifest.Report, duration time.Duration) error {
	path := config.Get(config.KeyHistoryPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	h, err := store.OpenHistory(path)
	if err != nil {
		return err
	}
	defer h.Close()
	return h.Record(r, duration)
}
