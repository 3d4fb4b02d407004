package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projlint/projlint/internal/config"
)

// newConfigCmd creates the config command for managing persistent settings.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage persistent settings",
		Long: `Manage settings stored in ` + config.FilePath() + `.

Settings resolve in order: PROJLINT_* environment variables, the config
file, then built-in defaults.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all settings",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			for _, key := range config.Keys() {
				printKeyValue(key, config.Get(key))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if !knownKey(args[0]) {
				return fmt.Errorf("unknown setting %q", args[0])
			}
			fmt.Println(config.Get(args[0]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting and save the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if !knownKey(args[0]) {
				return fmt.Errorf("unknown setting %q", args[0])
			}
			if err := config.Set(args[0], args[1]); err != nil {
				return err
			}
			printSuccess("Set %s", args[0])
			printDetail("%s = %s", args[0], args[1])
			return nil
		},
	})

	return cmd
}

func knownKey(key string) bool {
	for _, k := range config.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
