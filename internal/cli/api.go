package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/civitools/cv/internal/api"
	"github.com/civitools/cv/internal/encoder"
	"github.com/spf13/cobra"
)

const (
	inputArgs = "args"
	inputJSON = "json"
)

func newAPICommand(cctx *commandContext) *cobra.Command {
	var out, in string

	cmd := &cobra.Command{
		Use:   "api <Entity.action> [key=value...]",
		Short: "Call an API action",
		Long: `Call an API action on the booted site and print the result envelope.

Parameters are given as key=value pairs. Dotted keys nest, and values that
parse as JSON (numbers, booleans, objects) keep their type. With --in=json the
parameters are read as a JSON object from standard input instead.

Examples:
  cv api Extension.get
  cv api Extension.get key=org.example.foo --out=yaml
  cv api Extension.refresh remote=0
  echo '{"name":"uf"}' | cv api Setting.get --in=json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !encoder.Valid(out) {
				return fmt.Errorf("unknown output format %q (want one of %s)", out, strings.Join(encoder.AllFormats(), ", "))
			}
			entity, action, err := api.SplitAction(args[0])
			if err != nil {
				return err
			}
			params, err := readParams(cmd.InOrStdin(), in, args[1:])
			if err != nil {
				return err
			}

			rt, err := cctx.boot(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res := api.NewKernel(rt).Call(cmd.Context(), entity, action, params)
			if err := encoder.Encode(cmd.OutOrStdout(), out, res); err != nil {
				return err
			}
			if res.Failed() {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", encoder.DefaultFormat(encoder.FormatJSON), "Output format ("+strings.Join(encoder.AllFormats(), ",")+")")
	cmd.Flags().StringVar(&in, "in", inputArgs, "Input format (args, json)")
	return cmd
}

func readParams(stdin io.Reader, in string, args []string) (api.Params, error) {
	switch in {
	case inputArgs:
		return api.ParseParams(args)
	case inputJSON:
		if len(args) > 0 {
			return api.Params{}, fmt.Errorf("--in=json reads parameters from stdin; unexpected arguments %q", args)
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return api.Params{}, fmt.Errorf("reading parameters: %w", err)
		}
		return api.NewParams(string(data))
	default:
		return api.Params{}, fmt.Errorf("unknown input format %q (want args or json)", in)
	}
}
