package cli

import (
	"encoding/json"
	"fmt"

	"github.com/civitools/cv/internal/branding"
	"github.com/spf13/cobra"
)

func newVersionCommand(info buildInfo) *cobra.Command {
	var short, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, info.Version)
				return nil
			}

			if asJSON {
				out, err := json.MarshalIndent(map[string]string{
					"version": info.Version,
					"commit":  info.Commit,
					"date":    info.Date,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling version info: %w", err)
				}
				fmt.Fprintln(w, string(out))
				return nil
			}

			fmt.Fprintf(w, "%s version %s (commit: %s, built: %s)\n", branding.CLIName(), info.Version, info.Commit, info.Date)
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print version number only")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version info as JSON")
	return cmd
}
