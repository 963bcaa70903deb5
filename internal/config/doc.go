// Package config manages user-level settings stored at ~/.cv/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the default site root, the default output format and the extension feed
// URL. Every key can be overridden by a CV_-prefixed environment variable.
package config
