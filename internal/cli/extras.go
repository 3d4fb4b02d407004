package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/projlint/projlint/pkg/manifest"
)

// newExtrasCmd creates the extras command, which lists a manifest's
// optional dependency groups.
func newExtrasCmd() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "extras <pyproject.toml> [group]",
		Short: "List the manifest's extras groups",
		Long: `List the optional dependency groups declared by a manifest, or the
packages one group installs.

With --pick, an interactive picker lets you select groups and prints
the matching --extras flag for the deps command.

Examples:
  projlint extras pyproject.toml
  projlint extras pyproject.toml docs
  projlint extras --pick pyproject.toml`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			if len(m.Extras) == 0 {
				printInfo("No extras groups declared")
				return nil
			}
			if len(args) == 2 {
				return showExtrasGroup(m, args[1])
			}
			if pick {
				return pickExtras(m)
			}
			listExtras(m)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "select groups interactively")

	return cmd
}

// showExtrasGroup prints the packages one group installs.
func showExtrasGroup(m *manifest.Manifest, group string) error {
	pkgs, ok := m.Extras[group]
	if !ok {
		return fmt.Errorf("unknown extras group %q (have: %s)", group, strings.Join(m.ExtraNames(), ", "))
	}
	fmt.Println(StyleTitle.Render(group))
	for _, pkg := range pkgs {
		spec := "*"
		if dep, ok := m.Dependencies[pkg]; ok && dep.Spec != "" {
			spec = dep.Spec
		}
		printKeyValue(pkg, spec)
	}
	printNextStep("Resolve with", fmt.Sprintf("projlint deps %s --extras %s", m.Path(), group))
	return nil
}

func listExtras(m *manifest.Manifest) {
	fmt.Println(StyleTitle.Render("Extras"))
	for _, name := range m.ExtraNames() {
		printKeyValue(name, strings.Join(m.Extras[name], ", "))
	}
}

// pickExtras runs the interactive group picker and prints a ready-to-use
// deps invocation for the selection.
func pickExtras(m *manifest.Manifest) error {
	model := NewExtrasListModel(m)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("running picker: %w", err)
	}

	result, ok := final.(ExtrasListModel)
	if !ok || !result.Confirmed {
		printInfo("Nothing selected")
		return nil
	}

	selected := result.Selected()
	if len(selected) == 0 {
		printInfo("Nothing selected")
		return nil
	}

	printSuccess("Selected %s", strings.Join(selected, ", "))
	printNextStep("Resolve with", fmt.Sprintf("projlint deps %s --extras %s", m.Path(), strings.Join(selected, ",")))
	return nil
}
