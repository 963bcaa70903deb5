package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/civitools/cv/internal/extension"
	"github.com/civitools/cv/internal/host"
	"github.com/spf13/viper"
)

var testInfo = buildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"}

type testSite struct {
	root     string
	feed     *httptest.Server
	feedHits *atomic.Int32
}

func infoXML(key, file, version string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<extension key="%s" type="module">
  <file>%s</file>
  <name>%s</name>
  <version>%s</version>
</extension>
`, key, file, strings.TrimSuffix(file, ".xml"), version)
}

// isolate points HOME and the CV_ variables at nothing so the developer's own
// settings cannot leak into a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, v := range []string{"CV_SITE", "CV_OUTPUT", "CV_EXT_REPO_URL"} {
		t.Setenv(v, "")
	}
	t.Cleanup(viper.Reset)
}

// newTestSite creates a site with one remote extension (org.civicrm.foo),
// one installed local extension (bar), and a feed answering with feedStatus.
func newTestSite(t *testing.T, feedStatus int) *testSite {
	t.Helper()
	isolate(t)

	var hits atomic.Int32
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasSuffix(r.URL.Path, "/single") {
			http.NotFound(w, r)
			return
		}
		if feedStatus != http.StatusOK {
			w.WriteHeader(feedStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"org.civicrm.foo": infoXML("org.civicrm.foo", "foo.xml", "1.0"),
		})
	}))
	t.Cleanup(feed.Close)

	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "cv.settings.yaml"),
		fmt.Sprintf("version: \"5.69.0\"\nuf: Standalone\next_repo_url: %q\n", feed.URL+"/extdir"))
	writeTestFile(t, filepath.Join(root, host.DefaultExtensionsDir, "bar", extension.InfoFile), infoXML("bar", "bar.xml", "2.0"))

	ctx := context.Background()
	store, err := extension.OpenStore(ctx, filepath.Join(root, host.DefaultDataDir, extension.StoreFile))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if err := store.Save(ctx, extension.Record{FullName: "bar", Name: "bar.xml", IsActive: true}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	return &testSite{root: root, feed: feed, feedHits: &hits}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// run executes cv with args and returns stdout, stderr, and the exit code.
func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	return runWithInput(t, "", args...)
}

func runWithInput(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cctx := newCommandContext(testInfo)
	defer cctx.close()

	root := newRootCommand(cctx)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	code := exitCode(root.ExecuteContext(context.Background()), &stderr)
	return stdout.String(), stderr.String(), code
}
