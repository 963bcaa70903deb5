package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/civitools/cv/internal/extension"
)

// Level controls how much of the site is booted.
type Level string

const (
	// LevelNone boots nothing; commands run without a site.
	LevelNone Level = "none"
	// LevelSettings loads and validates the settings file only.
	LevelSettings Level = "settings"
	// LevelFull also opens the extension system.
	LevelFull Level = "full"
)

// Levels lists the accepted boot levels.
var Levels = []Level{LevelNone, LevelSettings, LevelFull}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown boot level %q (want none, settings, or full)", s)
}

// ErrNotBooted is returned when a service needs a higher boot level.
var ErrNotBooted = errors.New("site runtime not booted")

// BootOptions configures Boot.
type BootOptions struct {
	Dir        string // directory the settings search starts from
	Level      Level
	RepoURL    string // overrides the site's extension feed URL; may use {ver} and {uf}
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Runtime is one booted site. It lives for a single command invocation.
type Runtime struct {
	Level      Level
	Settings   *Settings
	Extensions *extension.System
	Logger     *slog.Logger
}

// Boot loads the site up to opts.Level.
func Boot(ctx context.Context, opts BootOptions) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	level := opts.Level
	if level == "" {
		level = LevelFull
	}

	rt := &Runtime{Level: level, Logger: logger}
	if level == LevelNone {
		return rt, nil
	}

	start, err := SearchDir(opts.Dir)
	if err != nil {
		return nil, err
	}
	path, err := FindSettings(start)
	if err != nil {
		return nil, err
	}
	settings, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if opts.RepoURL != "" {
		settings.ExtRepoURL = settings.ExpandRepoURL(opts.RepoURL)
	}
	rt.Settings = settings
	logger.Debug("loaded site settings", "file", settings.File, "version", settings.Version)

	if level == LevelSettings {
		return rt, nil
	}

	sys, err := extension.NewSystem(ctx, extension.Options{
		ExtensionsDir: settings.ExtensionsDir,
		DataDir:       settings.DataDir,
		RepoURL:       settings.ExtRepoURL,
		HTTPClient:    opts.HTTPClient,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	rt.Extensions = sys
	return rt, nil
}

// RequireSettings returns the settings or ErrNotBooted.
func (r *Runtime) RequireSettings() (*Settings, error) {
	if r == nil || r.Settings == nil {
		return nil, fmt.Errorf("%w: settings are not loaded (boot level %q)", ErrNotBooted, r.level())
	}
	return r.Settings, nil
}

// RequireExtensions returns the extension system or ErrNotBooted.
func (r *Runtime) RequireExtensions() (*extension.System, error) {
	if r == nil || r.Extensions == nil {
		return nil, fmt.Errorf("%w: extension system is not available (boot level %q)", ErrNotBooted, r.level())
	}
	return r.Extensions, nil
}

// Close releases resources opened by Boot.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	return r.Extensions.Close()
}

func (r *Runtime) level() Level {
	if r == nil {
		return LevelNone
	}
	return r.Level
}
