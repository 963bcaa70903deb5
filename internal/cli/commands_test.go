package cli

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestAPICommand(t *testing.T) {
	site := newTestSite(t, http.StatusOK)

	stdout, stderr, code := run(t, "api", "Extension.get", "key=bar", "--cwd", site.root, "--out", "json-strict")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	var res struct {
		IsError int `json:"is_error"`
		Version int `json:"version"`
		Count   int `json:"count"`
		Values  []struct {
			Key    string `json:"key"`
			Status string `json:"status"`
		} `json:"values"`
	}
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if res.IsError != 0 || res.Version != 3 || res.Count != 1 || res.Values[0].Status != "installed" {
		t.Errorf("result = %+v", res)
	}
}

func TestAPICommandJSONInput(t *testing.T) {
	site := newTestSite(t, http.StatusOK)

	stdout, _, code := runWithInput(t, `{"name":"uf"}`, "api", "Setting.get", "--in=json", "--cwd", site.root, "--level", "settings", "--out", "json-strict")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stdout, `"values":{"uf":"Standalone"}`) {
		t.Errorf("stdout = %s", stdout)
	}
}

func TestAPICommandFailure(t *testing.T) {
	site := newTestSite(t, http.StatusOK)

	stdout, _, code := run(t, "api", "Widget.get", "--cwd", site.root, "--out", "json-strict")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stdout, `"is_error":1`) || !strings.Contains(stdout, "unknown API action") {
		t.Errorf("stdout = %s", stdout)
	}

	_, stderr, code := run(t, "api", "Extension", "--cwd", site.root)
	if code != 1 || !strings.Contains(stderr, "malformed API action") {
		t.Errorf("malformed action: code = %d, stderr = %s", code, stderr)
	}

	_, stderr, code = run(t, "api", "System.get", "--cwd", site.root, "--in", "xml")
	if code != 1 || !strings.Contains(stderr, "unknown input format") {
		t.Errorf("bad --in: code = %d, stderr = %s", code, stderr)
	}
}

func TestAPICommandRespectsLevel(t *testing.T) {
	site := newTestSite(t, http.StatusOK)

	stdout, _, code := run(t, "api", "Extension.get", "--cwd", site.root, "--level", "settings", "--out", "json-strict")
	if code != 1 || !strings.Contains(stdout, "not booted") {
		t.Errorf("code = %d, stdout = %s", code, stdout)
	}

	_, stderr, code := run(t, "api", "System.get", "--level", "bogus")
	if code != 1 || !strings.Contains(stderr, "unknown boot level") {
		t.Errorf("code = %d, stderr = %s", code, stderr)
	}
}

func TestShellCommand(t *testing.T) {
	site := newTestSite(t, http.StatusOK)

	input := strings.Join([]string{
		"ext:list -L --columns key --out json-strict",
		"cli",
		"api Widget.get --out json-strict",
		"api System.get --out json-strict",
		"exit",
		"version",
	}, "\n") + "\n"
	stdout, stderr, code := runWithInput(t, input, "cli", "--cwd", site.root)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, `[{"key":"bar"}]`) {
		t.Errorf("ext:list output missing:\n%s", stdout)
	}
	if !strings.Contains(stdout, `"uf":"Standalone"`) {
		t.Errorf("System.get output missing; --cwd was not inherited:\n%s", stdout)
	}
	if !strings.Contains(stderr, "already running an interactive shell") {
		t.Errorf("nested cli was not refused:\n%s", stderr)
	}
	if strings.Contains(stdout, "cv version") {
		t.Errorf("commands after exit ran:\n%s", stdout)
	}
	if strings.Contains(stderr, "exit status 1") {
		t.Errorf("reported API failure was printed twice:\n%s", stderr)
	}
}

func TestDoctorCommand(t *testing.T) {
	site := newTestSite(t, http.StatusOK)

	stdout, _, code := run(t, "doctor", "--cwd", site.root)
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, stdout)
	}
	for _, want := range []string{"[OK]   Settings are valid", "Host version 5.69.0 (Standalone)", "(1 recorded)", "(1 found)", "[WARN] Feed cache: never fetched"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("doctor output missing %q:\n%s", want, stdout)
		}
	}

	if _, _, code := run(t, "ext:list", "-R", "--cwd", site.root, "--out", "none"); code != 0 {
		t.Fatalf("ext:list exit code = %d", code)
	}
	stdout, _, _ = run(t, "doctor", "--cwd", site.root)
	if !strings.Contains(stdout, "[OK]   Feed cache: fetched") {
		t.Errorf("doctor did not see the feed cache:\n%s", stdout)
	}
}

func TestDoctorCommandInvalidSettings(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeTestFile(t, root+"/cv.settings.yaml", "version: \"5.69.0\"\nunknown_key: 1\n")

	stdout, _, code := run(t, "doctor", "--cwd", root)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stdout, "[FAIL] Settings") || !strings.Contains(stdout, "unknown_key") {
		t.Errorf("stdout =\n%s", stdout)
	}
}

func TestConfigCommands(t *testing.T) {
	isolate(t)

	if _, stderr, code := run(t, "config", "set", "output", "yaml"); code != 0 {
		t.Fatalf("config set: code = %d, stderr = %s", code, stderr)
	}
	stdout, _, _ := run(t, "config", "get", "output")
	if strings.TrimSpace(stdout) != "yaml" {
		t.Errorf("config get output = %q", stdout)
	}
	stdout, _, _ = run(t, "config", "list", "--out", "json-strict")
	if !strings.Contains(stdout, `"output":"yaml"`) {
		t.Errorf("config list = %s", stdout)
	}

	for _, args := range [][]string{{"config", "set", "colour", "red"}, {"config", "set", "output", "xml"}} {
		if _, _, code := run(t, args...); code != 1 {
			t.Errorf("%v: exit code = %d, want 1", args, code)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"version"}, "cv version 1.2.3 (commit: abc123, built: 2026-01-01)\n"},
		{[]string{"version", "--short"}, "1.2.3\n"},
	}
	for _, tt := range tests {
		stdout, _, code := run(t, tt.args...)
		if code != 0 || stdout != tt.want {
			t.Errorf("%v = %q (code %d), want %q", tt.args, stdout, code, tt.want)
		}
	}

	stdout, _, _ := run(t, "version", "--json")
	var info map[string]string
	if err := json.Unmarshal([]byte(stdout), &info); err != nil || info["commit"] != "abc123" {
		t.Errorf("version --json = %s (%v)", stdout, err)
	}
}
