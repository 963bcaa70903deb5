package extension

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newFeedServer serves entries at /single and counts requests.
func newFeedServer(t *testing.T, entries map[string]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/single") {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestBrowserExtensions(t *testing.T) {
	srv, hits := newFeedServer(t, map[string]string{
		"org.example.foo": infoXML("org.example.foo", "foo", "Foo", "1.0"),
		"org.example.bad": "<extension",
	})

	b := NewBrowser(BrowserOptions{RepoURL: srv.URL + "/extdir/", CacheDir: t.TempDir()})
	if b.RepositoryURL() != srv.URL+"/extdir" {
		t.Errorf("RepositoryURL() = %q", b.RepositoryURL())
	}

	infos, err := b.Extensions(context.Background())
	if err != nil {
		t.Fatalf("Extensions() error = %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("Extensions() returned %d entries, want 1 (malformed skipped)", len(infos))
	}
	if infos[0].Key != "org.example.foo" || infos[0].File != "foo" || infos[0].Version != "1.0" {
		t.Errorf("Extensions()[0] = %+v", infos[0])
	}
	if hits.Load() != 1 {
		t.Errorf("feed requested %d times, want 1", hits.Load())
	}
}

func TestBrowserServesFreshCache(t *testing.T) {
	srv, hits := newFeedServer(t, map[string]string{
		"org.example.foo": infoXML("org.example.foo", "foo", "Foo", "1.0"),
	})
	cacheDir := t.TempDir()
	ctx := context.Background()

	first := NewBrowser(BrowserOptions{RepoURL: srv.URL, CacheDir: cacheDir})
	if _, err := first.Extensions(ctx); err != nil {
		t.Fatal(err)
	}
	if first.CachedAt().IsZero() {
		t.Error("CachedAt() is zero after a fetch")
	}

	second := NewBrowser(BrowserOptions{RepoURL: srv.URL, CacheDir: cacheDir})
	infos, err := second.Extensions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 {
		t.Errorf("cached Extensions() = %d entries", len(infos))
	}
	if hits.Load() != 1 {
		t.Errorf("feed requested %d times, want 1", hits.Load())
	}

	// An expired cache is refetched.
	second.now = func() time.Time { return time.Now().Add(DefaultFeedMaxAge + time.Hour) }
	if _, err := second.Extensions(ctx); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("feed requested %d times after expiry, want 2", hits.Load())
	}

	// Refresh always refetches.
	if err := second.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("feed requested %d times after refresh, want 3", hits.Load())
	}
}

func TestBrowserCacheKeyedByURL(t *testing.T) {
	srv, hits := newFeedServer(t, map[string]string{})
	cacheDir := t.TempDir()
	ctx := context.Background()

	if _, err := NewBrowser(BrowserOptions{RepoURL: srv.URL + "/a", CacheDir: cacheDir}).Extensions(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := NewBrowser(BrowserOptions{RepoURL: srv.URL + "/b", CacheDir: cacheDir}).Extensions(ctx); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("feed requested %d times, want 2", hits.Load())
	}
}

func TestBrowserErrors(t *testing.T) {
	ctx := context.Background()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()
	if _, err := NewBrowser(BrowserOptions{RepoURL: failing.URL}).Extensions(ctx); err == nil {
		t.Error("expected error for HTTP 500")
	}

	notJSON := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[1,2,3]"))
	}))
	defer notJSON.Close()
	if err := NewBrowser(BrowserOptions{RepoURL: notJSON.URL}).Refresh(ctx); err == nil {
		t.Error("expected error for non-object feed")
	}
}

func TestBrowserDisabled(t *testing.T) {
	b := NewBrowser(BrowserOptions{})
	if b.Enabled() {
		t.Fatal("browser without URL should be disabled")
	}
	infos, err := b.Extensions(context.Background())
	if err != nil || len(infos) != 0 {
		t.Errorf("Extensions() = %v, %v; want empty, nil", infos, err)
	}
	if err := b.Refresh(context.Background()); err != nil {
		t.Errorf("Refresh() error = %v", err)
	}
}
