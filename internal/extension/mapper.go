package extension

import (
	"errors"
	"path/filepath"
)

// ErrUnknownExtension is returned for keys the container does not hold.
var ErrUnknownExtension = errors.New("unknown extension")

// Mapper resolves extension keys to their metadata.
type Mapper struct {
	container *Container
	infos     map[string]*Info
}

// NewMapper returns a mapper reading metadata from container.
func NewMapper(container *Container) *Mapper {
	return &Mapper{container: container, infos: make(map[string]*Info)}
}

// KeyToInfo returns the metadata of the local extension identified by key.
func (m *Mapper) KeyToInfo(key string) (*Info, error) {
	if info, ok := m.infos[key]; ok {
		return info, nil
	}
	dir, err := m.container.Path(key)
	if err != nil {
		return nil, err
	}
	info, err := ParseInfoFile(filepath.Join(dir, InfoFile))
	if err != nil {
		return nil, err
	}
	m.infos[key] = info
	return info, nil
}

// Refresh drops cached metadata.
func (m *Mapper) Refresh() {
	m.infos = make(map[string]*Info)
}
