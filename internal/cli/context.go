package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/civitools/cv/internal/host"
	"github.com/civitools/cv/internal/inventory"
	"github.com/civitools/cv/internal/logging"
)

// commandContext carries the state of one invocation. The site is booted
// at most once and the inventory source memoizes the remote catalog for as
// long as the context lives.
type commandContext struct {
	info buildInfo

	cwd     string
	level   string
	verbose bool

	// repoURL overrides the site's extension feed; set before boot.
	repoURL    string
	httpClient *http.Client

	bootOnce sync.Once
	runtime  *host.Runtime
	bootErr  error

	sourceOnce sync.Once
	source     inventory.Source
	sourceErr  error
}

func newCommandContext(info buildInfo) *commandContext {
	return &commandContext{info: info, level: string(host.LevelFull)}
}

func (c *commandContext) logger(w io.Writer) *slog.Logger {
	return logging.ForVerbosity(w, c.verbose)
}

// boot loads the site at the requested level.
func (c *commandContext) boot(ctx context.Context, stderr io.Writer) (*host.Runtime, error) {
	c.bootOnce.Do(func() {
		level, err := host.ParseLevel(c.level)
		if err != nil {
			c.bootErr = err
			return
		}
		c.runtime, c.bootErr = host.Boot(ctx, host.BootOptions{
			Dir:        c.cwd,
			Level:      level,
			RepoURL:    c.repoURL,
			HTTPClient: c.httpClient,
			Logger:     c.logger(stderr),
		})
	})
	return c.runtime, c.bootErr
}

// inventorySource returns the memoized listing source of the booted site.
func (c *commandContext) inventorySource(ctx context.Context, stderr io.Writer) (inventory.Source, error) {
	c.sourceOnce.Do(func() {
		rt, err := c.boot(ctx, stderr)
		if err != nil {
			c.sourceErr = err
			return
		}
		sys, err := rt.RequireExtensions()
		if err != nil {
			c.sourceErr = err
			return
		}
		c.source = inventory.Memoize(inventory.FromSystem(sys))
	})
	return c.source, c.sourceErr
}

func (c *commandContext) close() {
	if c.runtime != nil {
		_ = c.runtime.Close()
	}
}
