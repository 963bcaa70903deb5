package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/civitools/cv/internal/api"
	"github.com/civitools/cv/internal/branding"
	"github.com/civitools/cv/internal/encoder"
	"github.com/civitools/cv/internal/host"
	"github.com/civitools/cv/internal/inventory"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type extListOptions struct {
	local   bool
	remote  bool
	refresh bool
	columns string
	out     string
	verbose bool
}

// repoOptions are the feed selection flags shared by extension commands.
type repoOptions struct {
	repo   string
	dev    bool
	ver    string
	uf     string
	status string
	ready  string
}

// refreshFunc asks the site to rescan extensions before listing.
type refreshFunc func(ctx context.Context, local, remote bool) *api.Result

func newExtListCommand(cctx *commandContext) *cobra.Command {
	var opts extListOptions
	var repo repoOptions

	cmd := &cobra.Command{
		Use:   "ext:list [regex]",
		Short: "List extensions",
		Long: `List local and remote extensions.

The optional regex is a delimited pattern matched against the full key and
the short name of each extension; rows matching either are shown.

Examples:
  cv ext:list
  cv ext:list --remote --dev /mail/
  cv ext:list '/^org\.civicrm\./i'

Note:
  Short names ("foobar") are not strongly guaranteed to be unique; keys
  ("org.example.foobar") are.

  The table output is not meant to be parsed. For parseable output use
  --out=json or consider ` + "`cv api Extension.get`" + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.out != encoder.FormatTable && !encoder.Valid(opts.out) {
				return fmt.Errorf("unknown output format %q (want one of %s)", opts.out, strings.Join(encoder.AllFormats(), ", "))
			}
			url, err := repo.url(cmd)
			if err != nil {
				return err
			}
			cctx.repoURL = url
			opts.verbose = cctx.verbose

			ctx := cmd.Context()
			stderr := cmd.ErrOrStderr()
			rt, err := cctx.boot(ctx, stderr)
			if err != nil {
				return err
			}
			sys, err := rt.RequireExtensions()
			if err != nil {
				return err
			}
			src, err := cctx.inventorySource(ctx, stderr)
			if err != nil {
				return err
			}

			if opts.wantRemote() {
				opts.notice(stderr, "Using extension feed %q", sys.Browser.RepositoryURL())
			}

			var refresh refreshFunc
			if opts.refresh {
				kernel := api.NewKernel(rt)
				refresh = func(ctx context.Context, local, remote bool) *api.Result {
					params, err := api.ParseParams([]string{
						fmt.Sprintf("local=%t", local),
						fmt.Sprintf("remote=%t", remote),
					})
					if err != nil {
						return &api.Result{IsError: 1, ErrorMessage: err.Error(), Version: api.Version}
					}
					return kernel.Call(ctx, "Extension", "refresh", params)
				}
			}

			filter := ""
			if len(args) > 0 {
				filter = args[0]
			}
			return listExtensions(ctx, cmd.OutOrStdout(), stderr, src, refresh, opts, filter)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.local, "local", "L", false, "Show local extensions")
	flags.BoolVarP(&opts.remote, "remote", "R", false, "Show remote extensions")
	flags.BoolVarP(&opts.refresh, "refresh", "r", false, "Refresh the list of extensions")
	flags.StringVar(&opts.columns, "columns", strings.Join(inventory.DefaultColumns, ","), "List of columns to display (comma separated)")
	flags.StringVar(&opts.out, "out", encoder.DefaultFormat(encoder.FormatTable), "Output format ("+strings.Join(encoder.AllFormats(), ",")+")")
	repo.register(cmd)
	return cmd
}

// listExtensions runs the optional refresh and renders the listing. A
// refresh that reports an error ends the command with exit code 1 before
// anything is listed.
func listExtensions(ctx context.Context, stdout, stderr io.Writer, src inventory.Source, refresh refreshFunc, opts extListOptions, filter string) error {
	if refresh != nil {
		opts.notice(stderr, "Refreshing extensions")
		local, remote := opts.selection()
		if res := refresh(ctx, local, remote); res.Failed() {
			printError(stderr, fmt.Errorf("%s", res.ErrorMessage))
			return &exitError{code: 1}
		}
	}

	local, remote := opts.selection()
	rows, err := inventory.Build(ctx, src, inventory.Options{
		Local:  local,
		Remote: remote,
		Filter: filter,
	})
	if err != nil {
		return err
	}

	columns := inventory.ParseColumns(opts.columns)
	if opts.out == encoder.FormatTable {
		return encoder.Table(stdout, columns, inventory.Table(rows, columns))
	}
	return encoder.Encode(stdout, opts.out, inventory.Project(rows, columns))
}

// selection applies the default of listing both locations.
func (o extListOptions) selection() (local, remote bool) {
	if !o.local && !o.remote {
		return true, true
	}
	return o.local, o.remote
}

func (o extListOptions) wantRemote() bool {
	_, remote := o.selection()
	return remote
}

// notice prints progress to stderr. Structured output stays quiet unless
// --verbose is set.
func (o extListOptions) notice(w io.Writer, format string, args ...any) {
	if o.out != encoder.FormatTable && !o.verbose {
		return
	}
	green := color.New(color.FgGreen)
	green.Fprintf(w, format+"\n", args...)
}

func (r *repoOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&r.repo, "repo", "", "URL of the remote extension feed (default: site setting)")
	flags.BoolVar(&r.dev, "dev", false, `Include developmental extensions (same as --filter-status='*' --filter-ready='*')`)
	flags.StringVar(&r.ver, "filter-ver", "", `Filter remote extensions by host compatibility, e.g. "5.69.0" (default: site version)`)
	flags.StringVar(&r.uf, "filter-uf", "", `Filter remote extensions by framework, e.g. "Drupal" (default: site framework)`)
	flags.StringVar(&r.status, "filter-status", "", `Filter remote extensions by stability, e.g. "stable" or "*"`)
	flags.StringVar(&r.ready, "filter-ready", "", `Filter remote extensions by review state, e.g. "ready" or "*"`)
}

// url builds the feed override. It returns "" when no feed flag was given.
// Unset version and framework filters default to the site's values through
// the {ver} and {uf} placeholders; "*" means any.
func (r *repoOptions) url(cmd *cobra.Command) (string, error) {
	flags := cmd.Flags()

	type part struct{ key, value string }
	parts := []part{}
	add := func(key, flag, value, fallback string, dev bool) {
		switch {
		case flags.Changed(flag):
			if value == "*" {
				value = ""
			}
			parts = append(parts, part{key, value})
		case dev:
			parts = append(parts, part{key, ""})
		case fallback != "":
			parts = append(parts, part{key, fallback})
		}
	}

	filtered := r.dev
	for _, f := range []string{"filter-ver", "filter-uf", "filter-status", "filter-ready"} {
		filtered = filtered || flags.Changed(f)
	}

	if flags.Changed("filter-ver") && r.ver != "" && r.ver != "*" {
		if _, err := host.ParseVersion(r.ver); err != nil {
			return "", fmt.Errorf("--filter-ver: %q is not a semantic version", r.ver)
		}
	}

	base := strings.TrimRight(strings.TrimSpace(r.repo), "/")
	if !filtered {
		return base, nil
	}
	if base == "" {
		base = branding.ExtRepoURL()
	}

	add("ver", "filter-ver", r.ver, "{ver}", false)
	add("uf", "filter-uf", r.uf, "{uf}", false)
	add("status", "filter-status", r.status, "", r.dev)
	add("ready", "filter-ready", r.ready, "", r.dev)

	encoded := make([]string, 0, len(parts))
	for _, p := range parts {
		encoded = append(encoded, p.key+"="+p.value)
	}
	return base + "/" + strings.Join(encoded, "|"), nil
}
