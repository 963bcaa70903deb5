// Package host boots the site runtime the CLI administers. It locates the
// site's settings file (cv.settings.yaml or cv.settings.toml) by walking up
// from a starting directory, validates it against an embedded JSON Schema,
// and, at the full boot level, opens the site's extension system.
package host
