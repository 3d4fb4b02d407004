package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/projlint/projlint/internal/config"
	"github.com/projlint/projlint/pkg/store"
)

// newHistoryCmd creates the history command, which lists recorded lint runs.
func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent lint runs",
		Long: `List lint runs recorded in the history database, newest first.

Examples:
  projlint history
  projlint history --limit 50`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			path := config.Get(config.KeyHistoryPath)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				printInfo("No lint runs recorded yet")
				return nil
			}

			h, err := store.OpenHistory(path)
			if err != nil {
				return err
			}
			defer h.Close()

			runs, err := h.List(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No lint runs recorded yet")
				return nil
			}

			printRuns(runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to show")

	return cmd
}

// printRuns renders lint runs as a table, newest first.
func printRuns(runs []store.Run) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.ManifestPath,
			fmt.Sprintf("%d", r.Errors),
			fmt.Sprintf("%d", r.Warnings),
			formatDuration(time.Duration(r.DurationMS) * time.Millisecond),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("When", "Manifest", "Errors", "Warnings", "Took").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(runs) {
				return lipgloss.NewStyle()
			}
			r := runs[row]
			switch {
			case col == 2 && r.Errors > 0:
				return StyleError
			case col == 3 && r.Warnings > 0:
				return StyleWarning
			case col == 2 || col == 3:
				return StyleDim
			}
			return listNormalStyle
		})

	fmt.Println(t.Render())
	printDetail("%s", num.Sprintf("%d runs", len(runs)))
}

// formatDuration renders short durations in a compact form.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}
