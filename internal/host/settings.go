package host

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/civitools/cv/internal/branding"
	"github.com/civitools/cv/internal/config"
	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// Default locations, relative to the site root.
const (
	DefaultExtensionsDir = "ext"
	DefaultDataDir       = "private"
)

// DefaultRepoFilter is appended to the branding feed URL when neither the
// site nor the user configures one. {ver} and {uf} are expanded from the
// settings.
const DefaultRepoFilter = "ver={ver}|cms={uf}"

// ErrSiteNotFound is returned when no settings file exists in the starting
// directory or any of its parents.
var ErrSiteNotFound = errors.New("site not found")

// InvalidSettingsError reports schema violations in a settings file.
type InvalidSettingsError struct {
	Path   string
	Issues []ValidationIssue
}

func (e *InvalidSettingsError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("invalid settings %s: %s", e.Path, strings.Join(parts, "; "))
}

// Settings is the validated, path-resolved configuration of one site.
type Settings struct {
	Root          string `json:"root" yaml:"root"`
	File          string `json:"file" yaml:"file"`
	Version       string `json:"version" yaml:"version"`
	UF            string `json:"uf" yaml:"uf"`
	ExtensionsDir string `json:"extensions_dir" yaml:"extensions_dir"`
	DataDir       string `json:"data_dir" yaml:"data_dir"`
	ExtRepoURL    string `json:"ext_repo_url" yaml:"ext_repo_url"`
}

// rawSettings mirrors the file; a nil ExtRepoURL means "not set".
type rawSettings struct {
	Version       string  `yaml:"version" toml:"version"`
	UF            string  `yaml:"uf" toml:"uf"`
	ExtensionsDir string  `yaml:"extensions_dir" toml:"extensions_dir"`
	DataDir       string  `yaml:"data_dir" toml:"data_dir"`
	ExtRepoURL    *string `yaml:"ext_repo_url" toml:"ext_repo_url"`
}

// SettingsFileNames returns the file names searched for, in priority order.
func SettingsFileNames() []string {
	base := branding.SettingsFile()
	return []string{base + ".yaml", base + ".yml", base + ".toml"}
}

// FindSettings walks up from start looking for a settings file.
func FindSettings(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for {
		for _, name := range SettingsFileNames() {
			candidate := filepath.Join(dir, name)
			if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s in %s or any parent directory", ErrSiteNotFound, strings.Join(SettingsFileNames(), " or "), start)
		}
		dir = parent
	}
}

// SearchDir picks the directory the site search starts from: the explicit
// dir, then $CV_SITE / config "site", then the working directory.
func SearchDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if v := os.Getenv(branding.EnvVar("SITE")); v != "" {
		return v, nil
	}
	if v := config.Get(config.KeySite); v != "" {
		return v, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return wd, nil
}

// LoadSettings reads, validates, and resolves the settings file at path.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSiteNotFound, path)
		}
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	doc, err := decodeDocument(path, data)
	if err != nil {
		return nil, err
	}

	result, err := Validate(doc)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &InvalidSettingsError{Path: path, Issues: result.Issues}
	}

	var raw rawSettings
	if isTOML(path) {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	root := filepath.Dir(path)
	s := &Settings{
		Root:          root,
		File:          path,
		Version:       raw.Version,
		UF:            raw.UF,
		ExtensionsDir: resolvePath(root, raw.ExtensionsDir, DefaultExtensionsDir),
		DataDir:       resolvePath(root, raw.DataDir, DefaultDataDir),
	}
	if raw.ExtRepoURL != nil {
		s.ExtRepoURL = strings.TrimSpace(*raw.ExtRepoURL)
	} else if v := config.Get(config.KeyExtRepoURL); v != "" {
		s.ExtRepoURL = v
	} else {
		s.ExtRepoURL = DefaultRepoURL()
	}
	s.ExtRepoURL = s.ExpandRepoURL(s.ExtRepoURL)
	return s, nil
}

// DefaultRepoURL returns the feed URL used when none is configured.
func DefaultRepoURL() string {
	return branding.ExtRepoURL() + "/" + DefaultRepoFilter
}

// ExpandRepoURL substitutes the {ver} and {uf} placeholders of a feed URL.
func (s *Settings) ExpandRepoURL(url string) string {
	return strings.NewReplacer("{ver}", s.Version, "{uf}", s.UF).Replace(url)
}

// ValidateFile decodes a settings file and validates it without resolving it.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	doc, err := decodeDocument(path, data)
	if err != nil {
		return nil, err
	}
	return Validate(doc)
}

// Values returns the settings as a flat name → value map.
func (s *Settings) Values() map[string]any {
	return map[string]any{
		"root":           s.Root,
		"file":           s.File,
		"version":        s.Version,
		"uf":             s.UF,
		"extensions_dir": s.ExtensionsDir,
		"data_dir":       s.DataDir,
		"ext_repo_url":   s.ExtRepoURL,
	}
}

func decodeDocument(path string, data []byte) (map[string]any, error) {
	doc := map[string]any{}
	var err error
	if isTOML(path) {
		err = toml.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func resolvePath(root, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(root, value)
}
