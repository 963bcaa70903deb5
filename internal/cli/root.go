package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/civitools/cv/internal/branding"
	"github.com/civitools/cv/internal/config"
	"github.com/civitools/cv/internal/host"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// buildInfo is injected via ldflags.
type buildInfo struct {
	Version string
	Commit  string
	Date    string
}

// exitError ends the process with code. A nil err means the failure was
// already reported and nothing more is printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// Execute runs the CLI with build info injected via ldflags and returns the
// process exit code.
func Execute(version, commit, date string) int {
	config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	info := buildInfo{Version: version, Commit: commit, Date: date}
	err := runCommand(ctx, info, os.Args[1:], os.Stdout, os.Stderr)
	return exitCode(err, os.Stderr)
}

// runCommand executes one invocation with a fresh command tree and context.
func runCommand(ctx context.Context, info buildInfo, args []string, stdout, stderr io.Writer) error {
	return execute(ctx, newCommandContext(info), args, stdout, stderr)
}

func execute(ctx context.Context, cctx *commandContext, args []string, stdout, stderr io.Writer) error {
	defer cctx.close()

	root := newRootCommand(cctx)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			printError(stderr, ee.err)
		}
		return ee.code
	}
	if !errors.Is(err, context.Canceled) {
		printError(stderr, err)
	}
	return 1
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "Error: %v\n", err)
}

func newRootCommand(cctx *commandContext) *cobra.Command {
	root := &cobra.Command{
		Use:   branding.CLIName(),
		Short: branding.Description(),
		Long: branding.DisplayName() + ` boots a site from its settings file and administers it from the
command line: list extensions, call the site API, or open an interactive shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := host.ParseLevel(cctx.level)
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cctx.cwd, "cwd", "", "Directory the site search starts from (default: $"+branding.EnvVar("SITE")+", config \"site\", or the working directory)")
	flags.StringVar(&cctx.level, "level", string(host.LevelFull), "Bootstrap level (none, settings, full)")
	flags.BoolVarP(&cctx.verbose, "verbose", "v", false, "Show notices and debug logging")

	root.AddCommand(newExtListCommand(cctx))
	root.AddCommand(newAPICommand(cctx))
	root.AddCommand(newShellCommand(cctx))
	root.AddCommand(newConfigCommand())
	root.AddCommand(newDoctorCommand(cctx))
	root.AddCommand(newVersionCommand(cctx.info))
	return root
}
