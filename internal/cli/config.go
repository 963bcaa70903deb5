package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/civitools/cv/internal/branding"
	"github.com/civitools/cv/internal/config"
	"github.com/civitools/cv/internal/encoder"
	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user settings",
		Long: `Read and write user settings stored at ~/` + branding.HomeDir() + `/config.yaml.

Known keys:
  site          default site directory (same as --cwd)
  output        default output format for structured commands
  ext_repo_url  extension feed used when the site does not configure one

Every key can also be set through the environment, e.g. ` + branding.EnvVar("OUTPUT") + `.`,
	}
	cmd.AddCommand(newConfigSetCommand(), newConfigGetCommand(), newConfigListCommand())
	return cmd
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Load()
			key, value := args[0], args[1]
			if !slices.Contains(config.Keys, key) {
				return fmt.Errorf("unknown config key %q (want one of %s)", key, strings.Join(config.Keys, ", "))
			}
			if key == config.KeyOutput && !encoder.Valid(value) {
				return fmt.Errorf("unknown output format %q (want one of %s)", value, strings.Join(encoder.AllFormats(), ", "))
			}
			if err := config.Set(key, value); err != nil {
				return fmt.Errorf("setting config key %q: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Load()
			fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
			return nil
		},
	}
}

func newConfigListCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Load()
			values := config.All()
			if out != encoder.FormatTable {
				return encoder.Encode(cmd.OutOrStdout(), out, values)
			}
			rows := make([][]string, 0, len(values))
			for _, k := range slices.Sorted(maps.Keys(values)) {
				rows = append(rows, []string{k, values[k]})
			}
			return encoder.Table(cmd.OutOrStdout(), []string{"key", "value"}, rows)
		},
	}
	cmd.Flags().StringVar(&out, "out", encoder.FormatTable, "Output format ("+strings.Join(encoder.AllFormats(), ",")+")")
	return cmd
}
