package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/civitools/cv/internal/config"
	"github.com/civitools/cv/internal/extension"
	"github.com/civitools/cv/internal/host"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// doctorReport collects check results in the [OK]/[WARN]/[FAIL] style.
type doctorReport struct {
	w      io.Writer
	failed bool
}

func (r *doctorReport) ok(format string, args ...any) {
	fmt.Fprintf(r.w, "[OK]   "+format+"\n", args...)
}

func (r *doctorReport) warn(format string, args ...any) {
	fmt.Fprintf(r.w, "[WARN] "+format+"\n", args...)
}

func (r *doctorReport) fail(format string, args ...any) {
	r.failed = true
	fmt.Fprintf(r.w, "[FAIL] "+format+"\n", args...)
}

func newDoctorCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Health check for the site and cv setup",
		Long: `Run diagnostic checks: user config, site settings, the extension store,
and the extension feed cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := &doctorReport{w: cmd.OutOrStdout()}
			runDoctor(cmd.Context(), cctx, report, cmd.ErrOrStderr())
			if report.failed {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

func runDoctor(ctx context.Context, cctx *commandContext, r *doctorReport, stderr io.Writer) {
	if _, err := os.Stat(config.FilePath()); err == nil {
		r.ok("User config: %s", config.FilePath())
	} else {
		r.ok("User config: %s (not created, defaults apply)", config.FilePath())
	}

	start, err := host.SearchDir(cctx.cwd)
	if err != nil {
		r.fail("Site search: %v", err)
		return
	}
	path, err := host.FindSettings(start)
	if err != nil {
		r.fail("Site: %v", err)
		return
	}
	r.ok("Site settings: %s", path)

	result, err := host.ValidateFile(path)
	if err != nil {
		r.fail("Settings: %v", err)
		return
	}
	if !result.Valid {
		for _, issue := range result.Issues {
			r.fail("Settings %s", issue)
		}
		return
	}
	r.ok("Settings are valid")

	rt, err := host.Boot(ctx, host.BootOptions{
		Dir:        filepath.Dir(path),
		Level:      host.LevelFull,
		HTTPClient: cctx.httpClient,
		Logger:     cctx.logger(stderr),
	})
	if err != nil {
		r.fail("Bootstrap: %v", err)
		return
	}
	defer rt.Close()
	r.ok("Host version %s (%s)", rt.Settings.Version, displayUF(rt.Settings.UF))

	sys, err := rt.RequireExtensions()
	if err != nil {
		r.fail("Extension system: %v", err)
		return
	}
	checkExtensionStore(ctx, sys, r)
	checkFeedCache(sys.Browser, r)
}

func checkExtensionStore(ctx context.Context, sys *extension.System, r *doctorReport) {
	records, err := sys.Store.Records(ctx)
	if err != nil {
		r.fail("Extension store %s: %v", sys.Store.Path(), err)
		return
	}
	r.ok("Extension store: %s (%d recorded)", sys.Store.Path(), len(records))

	keys, err := sys.Container.Keys()
	if err != nil {
		r.fail("Extensions directory %s: %v", sys.Container.BaseDir(), err)
		return
	}
	if _, err := os.Stat(sys.Container.BaseDir()); err != nil {
		r.warn("Extensions directory %s does not exist", sys.Container.BaseDir())
		return
	}
	r.ok("Extensions directory: %s (%d found)", sys.Container.BaseDir(), len(keys))
}

func checkFeedCache(b *extension.Browser, r *doctorReport) {
	if !b.Enabled() {
		r.warn("Extension feed is disabled (empty ext_repo_url)")
		return
	}
	r.ok("Extension feed: %s", b.FeedURL())

	fetched := b.CachedAt()
	switch {
	case fetched.IsZero():
		r.warn("Feed cache: never fetched; run `cv ext:list -R -r`")
	case time.Since(fetched) > extension.DefaultFeedMaxAge:
		r.warn("Feed cache: stale, fetched %s", humanize.Time(fetched))
	default:
		r.ok("Feed cache: fetched %s", humanize.Time(fetched))
	}
}

func displayUF(uf string) string {
	if uf == "" {
		return "no framework"
	}
	return uf
}
