package extension

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/tidwall/gjson"
)

const (
	// FeedCacheFile is the name of the cached feed inside the cache directory.
	FeedCacheFile = "ext-feed.json"

	// DefaultFeedMaxAge is how long a cached feed is served before refetching.
	DefaultFeedMaxAge = 24 * time.Hour

	defaultFeedTimeout = 30 * time.Second
)

// BrowserOptions configures a Browser.
type BrowserOptions struct {
	RepoURL  string // feed base URL; empty disables the browser
	CacheDir string // directory holding the cached feed; empty disables caching
	Client   *http.Client
	MaxAge   time.Duration
	Logger   *slog.Logger
}

// Browser reads the remote extension feed: a JSON object served at
// <repo>/single mapping each extension key to its info.xml document.
type Browser struct {
	repoURL  string
	cacheDir string
	client   *http.Client
	maxAge   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// feedCache is the on-disk form of a fetched feed.
type feedCache struct {
	URL        string          `json:"url"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Extensions json.RawMessage `json:"extensions"`
}

// NewBrowser returns a browser for the feed described by opts.
func NewBrowser(opts BrowserOptions) *Browser {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultFeedTimeout}
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultFeedMaxAge
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Browser{
		repoURL:  strings.TrimRight(strings.TrimSpace(opts.RepoURL), "/"),
		cacheDir: opts.CacheDir,
		client:   client,
		maxAge:   maxAge,
		logger:   logger,
		now:      time.Now,
	}
}

// Enabled reports whether a feed URL is configured.
func (b *Browser) Enabled() bool { return b.repoURL != "" }

// RepositoryURL returns the feed base URL.
func (b *Browser) RepositoryURL() string { return b.repoURL }

// FeedURL returns the URL the feed document is fetched from.
func (b *Browser) FeedURL() string { return b.repoURL + "/single" }

// CachePath returns the cached feed location, or "" when caching is off.
func (b *Browser) CachePath() string {
	if b.cacheDir == "" {
		return ""
	}
	return filepath.Join(b.cacheDir, FeedCacheFile)
}

// CachedAt returns when the cached feed for the current URL was fetched, or
// the zero time when there is none.
func (b *Browser) CachedAt() time.Time {
	cache, err := b.readCache()
	if err != nil || cache == nil {
		return time.Time{}
	}
	return cache.FetchedAt
}

// Extensions returns the extensions listed by the feed, served from the
// cache while it is fresh.
func (b *Browser) Extensions(ctx context.Context) ([]*Info, error) {
	if !b.Enabled() {
		return nil, nil
	}

	cache, err := b.readCache()
	if err != nil {
		b.logger.Warn("ignoring unreadable feed cache", "path", b.CachePath(), "error", err)
	}
	if cache != nil && b.now().Sub(cache.FetchedAt) < b.maxAge {
		b.logger.Debug("using cached extension feed", "url", b.FeedURL(), "fetched_at", cache.FetchedAt)
		return b.parseFeed(cache.Extensions)
	}

	body, err := b.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return b.parseFeed(body)
}

// Refresh refetches the feed and rewrites the cache.
func (b *Browser) Refresh(ctx context.Context) error {
	if !b.Enabled() {
		return nil
	}
	body, err := b.fetch(ctx)
	if err != nil {
		return err
	}
	_, err = b.parseFeed(body)
	return err
}

func (b *Browser) fetch(ctx context.Context) ([]byte, error) {
	url := b.FeedURL()
	b.logger.Debug("fetching extension feed", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching extension feed %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching extension feed %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading extension feed %s: %w", url, err)
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return nil, fmt.Errorf("extension feed %s: response is not a JSON object", url)
	}

	if err := b.writeCache(body); err != nil {
		// The listing still works from the fresh copy.
		b.logger.Warn("could not write feed cache", "path", b.CachePath(), "error", err)
	}
	return body, nil
}

// parseFeed decodes each entry's info.xml. Malformed entries are skipped.
func (b *Browser) parseFeed(body []byte) ([]*Info, error) {
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("extension feed %s: response is not a JSON object", b.FeedURL())
	}

	var infos []*Info
	doc.ForEach(func(key, value gjson.Result) bool {
		info, err := ParseInfo([]byte(value.String()))
		if err != nil {
			b.logger.Warn("skipping malformed feed entry", "key", key.String(), "error", err)
			return true
		}
		if info.Key == "" {
			info.Key = key.String()
		}
		infos = append(infos, info)
		return true
	})
	return infos, nil
}

func (b *Browser) readCache() (*feedCache, error) {
	path := b.CachePath()
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading feed cache: %w", err)
	}
	var cache feedCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing feed cache: %w", err)
	}
	if cache.URL != b.FeedURL() {
		return nil, nil
	}
	return &cache, nil
}

// writeCache replaces the cache file atomically while holding its lock.
func (b *Browser) writeCache(body []byte) error {
	path := b.CachePath()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(b.cacheDir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking feed cache: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.Marshal(feedCache{
		URL:        b.FeedURL(),
		FetchedAt:  b.now().UTC(),
		Extensions: json.RawMessage(body),
	})
	if err != nil {
		return fmt.Errorf("marshaling feed cache: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing feed cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalizing feed cache: %w", err)
	}
	return nil
}
