package inventory

import (
	"context"
	"slices"
	"sync"
)

// Entry is the metadata the builder needs for one extension.
type Entry struct {
	Key     string
	Name    string
	Version string
}

// Source is the set of host services a listing is built from.
type Source interface {
	// FetchCatalog returns the extensions advertised by the remote feed.
	FetchCatalog(ctx context.Context) ([]Entry, error)
	// ListLocalKeys returns the keys of extensions present in the site.
	ListLocalKeys(ctx context.Context) ([]string, error)
	// GetStatuses maps local extension keys to their installation status.
	GetStatuses(ctx context.Context) (map[string]string, error)
	// ResolveMetadata looks up name and version of a local extension.
	ResolveMetadata(ctx context.Context, key string) (Entry, error)
}

// Memoize wraps src so that the remote catalog is fetched at most once. The
// wrapper belongs to a single command invocation and must not be shared
// across invocations.
func Memoize(src Source) Source {
	if m, ok := src.(*memoSource); ok {
		return m
	}
	return &memoSource{Source: src}
}

type memoSource struct {
	Source

	mu      sync.Mutex
	fetched bool
	catalog []Entry
	err     error
}

func (m *memoSource) FetchCatalog(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fetched {
		m.catalog, m.err = m.Source.FetchCatalog(ctx)
		m.fetched = true
	}
	if m.err != nil {
		return nil, m.err
	}
	return slices.Clone(m.catalog), nil
}
