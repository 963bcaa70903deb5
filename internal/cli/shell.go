package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/civitools/cv/internal/branding"
	"github.com/civitools/cv/internal/shell"
	"github.com/spf13/cobra"
)

func newShellCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cli",
		Short: "Load interactive command line",
		Long: `Open an interactive shell. Each line runs as its own ` + branding.CLIName() + ` command
with a fresh bootstrap, e.g. "ext:list -L" or "api System.get". Type exit or
quit (or press Ctrl+D) to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s interactive shell. Type \"exit\" to leave.\n", branding.DisplayName(), cctx.info.Version)

			sh := shell.New(shellExecutor(cctx), shell.Options{
				In:     cmd.InOrStdin(),
				Out:    cmd.OutOrStdout(),
				Err:    cmd.ErrOrStderr(),
				Prompt: branding.CLIName() + "> ",
				Name:   cmd.Name(),
			})
			return sh.Run(cmd.Context())
		},
	}
}

// shellExecutor runs each shell line as a separate invocation that inherits
// the shell's global flags.
func shellExecutor(cctx *commandContext) shell.Executor {
	var inherited []string
	if cctx.cwd != "" {
		inherited = append(inherited, "--cwd="+cctx.cwd)
	}
	if cctx.level != "" {
		inherited = append(inherited, "--level="+cctx.level)
	}
	if cctx.verbose {
		inherited = append(inherited, "--verbose")
	}

	return func(ctx context.Context, args []string, stdout, stderr io.Writer) error {
		line := append(append([]string(nil), inherited...), args...)
		child := newCommandContext(cctx.info)
		child.httpClient = cctx.httpClient
		err := execute(ctx, child, line, stdout, stderr)

		var ee *exitError
		if errors.As(err, &ee) && ee.err == nil {
			return nil
		}
		return err
	}
}
