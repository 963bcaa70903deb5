package extension

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
)

// Options locates the pieces of a site's extension system.
type Options struct {
	ExtensionsDir string
	DataDir       string
	RepoURL       string
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// System bundles the extension services of one booted site.
type System struct {
	Browser   *Browser
	Container *Container
	Mapper    *Mapper
	Manager   *Manager
	Store     *Store
}

// RefreshOptions selects what Refresh reloads.
type RefreshOptions struct {
	Local  bool
	Remote bool
}

// NewSystem opens the site's store and wires the extension services.
func NewSystem(ctx context.Context, opts Options) (*System, error) {
	store, err := OpenStore(ctx, filepath.Join(opts.DataDir, StoreFile))
	if err != nil {
		return nil, fmt.Errorf("opening extension store: %w", err)
	}

	container := NewContainer(opts.ExtensionsDir, opts.Logger)
	return &System{
		Browser: NewBrowser(BrowserOptions{
			RepoURL:  opts.RepoURL,
			CacheDir: filepath.Join(opts.DataDir, "cache"),
			Client:   opts.HTTPClient,
			Logger:   opts.Logger,
		}),
		Container: container,
		Mapper:    NewMapper(container),
		Manager:   NewManager(store, container),
		Store:     store,
	}, nil
}

// Close releases the store.
func (s *System) Close() error {
	if s == nil {
		return nil
	}
	return s.Store.Close()
}

// Refresh rescans local extensions and/or refetches the remote feed.
func (s *System) Refresh(ctx context.Context, opts RefreshOptions) error {
	if opts.Local {
		s.Container.Refresh()
		s.Mapper.Refresh()
		if err := s.Manager.Refresh(ctx, s.Mapper); err != nil {
			return err
		}
	}
	if opts.Remote {
		if err := s.Browser.Refresh(ctx); err != nil {
			return err
		}
	}
	return nil
}
