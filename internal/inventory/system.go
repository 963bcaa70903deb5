package inventory

import (
	"context"

	"github.com/civitools/cv/internal/extension"
)

// SystemSource reads a listing from a booted site's extension system.
type SystemSource struct {
	sys *extension.System
}

// FromSystem adapts sys to Source.
func FromSystem(sys *extension.System) *SystemSource {
	return &SystemSource{sys: sys}
}

func (s *SystemSource) FetchCatalog(ctx context.Context) ([]Entry, error) {
	infos, err := s.sys.Browser.Extensions(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, entryFromInfo(info))
	}
	return entries, nil
}

func (s *SystemSource) ListLocalKeys(context.Context) ([]string, error) {
	return s.sys.Container.Keys()
}

func (s *SystemSource) GetStatuses(ctx context.Context) (map[string]string, error) {
	return s.sys.Manager.Statuses(ctx)
}

func (s *SystemSource) ResolveMetadata(_ context.Context, key string) (Entry, error) {
	info, err := s.sys.Mapper.KeyToInfo(key)
	if err != nil {
		return Entry{}, err
	}
	return entryFromInfo(info), nil
}

func entryFromInfo(info *extension.Info) Entry {
	return Entry{Key: info.Key, Name: info.File, Version: info.Version}
}
