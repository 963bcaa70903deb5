package extension

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func infoXML(key, file, label, version string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<extension key="%s" type="module">
  <file>%s</file>
  <name>%s</name>
  <description>Test extension %s</description>
  <version>%s</version>
  <develStage>stable</develStage>
  <compatibility>
    <ver>5.45</ver>
    <ver>6.0</ver>
  </compatibility>
</extension>
`, key, file, label, key, version)
}

// writeExtension creates <base>/<rel>/info.xml and returns the directory.
func writeExtension(t *testing.T, base, rel, key, file, version string) string {
	t.Helper()
	dir := filepath.Join(base, rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	content := infoXML(key, file, "Label "+file, version)
	if err := os.WriteFile(filepath.Join(dir, InfoFile), []byte(content), 0o644); err != nil {
		t.Fatalf("writing info.xml: %v", err)
	}
	return dir
}
