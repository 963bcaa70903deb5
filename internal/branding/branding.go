// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	HomeDir      string `yaml:"home_dir"`
	EnvPrefix    string `yaml:"env_prefix"`
	SettingsFile string `yaml:"settings_file"`
	ExtRepoURL   string `yaml:"ext_repo_url"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:      "cv",
			DisplayName:  "cv",
			Description:  "Command-line administration shell for CMS sites",
			HomeDir:      ".cv",
			EnvPrefix:    "CV",
			SettingsFile: "cv.settings",
			ExtRepoURL:   "https://civicrm.org/extdir",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "cv").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".cv").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "CV").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// SettingsFile returns the site settings file name without extension.
func SettingsFile() string { load(); return defaults.SettingsFile }

// ExtRepoURL returns the default extension feed base URL.
func ExtRepoURL() string { load(); return defaults.ExtRepoURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("SITE") → "CV_SITE".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
