package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/projlint/projlint/pkg/manifest"
)

// newShowCmd creates the show command, which prints a parsed manifest.
func newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <pyproject.toml>",
		Short: "Display a parsed manifest",
		Long: `Parse a pyproject.toml manifest and display its normalized contents.

Examples:
  projlint show pyproject.toml
  projlint show --format json pyproject.toml
  projlint show --format yaml pyproject.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			switch format {
			case "text":
				printManifest(m)
				return nil
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			case "yaml":
				return writeYAML(m)
			}
			return fmt.Errorf("unknown format %q (expected text, json, or yaml)", format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text|json|yaml)")

	return cmd
}

// writeYAML re-encodes the manifest through its JSON form so the YAML
// output uses the same field names as the JSON output.
func writeYAML(m *manifest.Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// printManifest renders the manifest as styled terminal output.
func printManifest(m *manifest.Manifest) {
	fmt.Println(StyleTitle.Render(m.Project.Name))
	printKeyValue("Version", m.Project.Version)
	if m.Project.Description != "" {
		printKeyValue("Description", m.Project.Description)
	}
	if m.Project.License != "" {
		printKeyValue("License", m.Project.License)
	}
	if len(m.Project.Authors) > 0 {
		authors := make([]string, len(m.Project.Authors))
		for i, a := range m.Project.Authors {
			authors[i] = a.String()
		}
		printKeyValue("Authors", strings.Join(authors, ", "))
	}
	if m.RequiresPython != "" {
		printKeyValue("Python", m.RequiresPython)
	}
	if m.BuildSystem.Backend != "" {
		printKeyValue("Backend", m.BuildSystem.Backend)
	}
	if m.Format.Declared && m.Format.LineLength > 0 {
		printKeyValue("Line length", fmt.Sprintf("%d", m.Format.LineLength))
	}

	printDepTable("Dependencies", m.DependencyNames(), m.Dependencies)
	printDepTable("Dev dependencies", m.DevDependencyNames(), m.DevDependencies)

	if len(m.Extras) > 0 {
		fmt.Println()
		fmt.Println(StyleHighlight.Render("Extras"))
		for _, name := range m.ExtraNames() {
			printKeyValue(name, strings.Join(m.Extras[name], ", "))
		}
	}
}

func printDepTable(title string, names []string, deps map[string]manifest.Dependency) {
	if len(names) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(StyleHighlight.Render(num.Sprintf("%s (%d)", title, len(names))))
	for _, name := range names {
		dep := deps[name]
		spec := dep.Spec
		if spec == "" && dep.Git != "" {
			spec = "git: " + dep.Git
		}
		if spec == "" {
			spec = "*"
		}
		printKeyValue(name, spec)
	}
}
