package extension

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Container is the set of extensions physically present under a base
// directory. The directory is scanned lazily and the result kept until
// Refresh is called.
type Container struct {
	baseDir string
	logger  *slog.Logger

	scanned bool
	paths   map[string]string
	keys    []string
}

// NewContainer returns a container rooted at baseDir.
func NewContainer(baseDir string, logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Container{baseDir: baseDir, logger: logger}
}

// BaseDir returns the scanned directory.
func (c *Container) BaseDir() string { return c.baseDir }

// Keys returns the extension keys found in the container, sorted.
func (c *Container) Keys() ([]string, error) {
	if err := c.ensureScanned(); err != nil {
		return nil, err
	}
	return append([]string(nil), c.keys...), nil
}

// Has reports whether key is present in the container.
func (c *Container) Has(key string) (bool, error) {
	if err := c.ensureScanned(); err != nil {
		return false, err
	}
	_, ok := c.paths[key]
	return ok, nil
}

// Path returns the directory of the extension identified by key.
func (c *Container) Path(key string) (string, error) {
	if err := c.ensureScanned(); err != nil {
		return "", err
	}
	p, ok := c.paths[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownExtension, key)
	}
	return p, nil
}

// Refresh discards the previous scan.
func (c *Container) Refresh() {
	c.scanned = false
	c.paths = nil
	c.keys = nil
}

func (c *Container) ensureScanned() error {
	if c.scanned {
		return nil
	}
	paths, err := c.scan()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	c.paths = paths
	c.keys = keys
	c.scanned = true
	return nil
}

// scan walks baseDir in lexical order. A directory holding an info.xml is
// an extension and is not descended further.
func (c *Container) scan() (map[string]string, error) {
	paths := make(map[string]string)
	if c.baseDir == "" {
		return paths, nil
	}
	if _, err := os.Stat(c.baseDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("extensions directory does not exist", "dir", c.baseDir)
			return paths, nil
		}
		return nil, fmt.Errorf("reading extensions directory %s: %w", c.baseDir, err)
	}

	err := filepath.WalkDir(c.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.baseDir && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}

		infoPath := filepath.Join(path, InfoFile)
		if _, statErr := os.Stat(infoPath); statErr != nil {
			return nil
		}

		info, parseErr := ParseInfoFile(infoPath)
		if parseErr != nil {
			c.logger.Warn("skipping unreadable extension", "path", path, "error", parseErr)
			return fs.SkipDir
		}
		if prev, dup := paths[info.Key]; dup {
			c.logger.Warn("duplicate extension key", "key", info.Key, "kept", prev, "ignored", path)
			return fs.SkipDir
		}
		paths[info.Key] = path
		return fs.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("scanning extensions directory %s: %w", c.baseDir, err)
	}

	c.logger.Debug("scanned extensions directory", "dir", c.baseDir, "count", len(paths))
	return paths, nil
}
