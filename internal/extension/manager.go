package extension

import (
	"context"
	"fmt"
)

// Installation status labels.
const (
	StatusUninstalled      = "uninstalled"
	StatusInstalled        = "installed"
	StatusDisabled         = "disabled"
	StatusInstalledMissing = "installed-missing"
	StatusDisabledMissing  = "disabled-missing"
)

// Manager computes installation statuses by combining the store with the
// container.
type Manager struct {
	store     *Store
	container *Container
	statuses  map[string]string
}

// NewManager returns a manager over store and container.
func NewManager(store *Store, container *Container) *Manager {
	return &Manager{store: store, container: container}
}

// Statuses maps every known extension key to its status. Stored extensions
// are installed or disabled, suffixed with -missing when their code is gone;
// extensions only present on disk are uninstalled. The result is cached
// until Refresh.
func (m *Manager) Statuses(ctx context.Context) (map[string]string, error) {
	if m.statuses != nil {
		return cloneStatuses(m.statuses), nil
	}

	records, err := m.store.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading extension statuses: %w", err)
	}
	keys, err := m.container.Keys()
	if err != nil {
		return nil, fmt.Errorf("loading extension statuses: %w", err)
	}
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}

	statuses := make(map[string]string, len(records)+len(keys))
	for _, r := range records {
		switch {
		case r.IsActive && present[r.FullName]:
			statuses[r.FullName] = StatusInstalled
		case r.IsActive:
			statuses[r.FullName] = StatusInstalledMissing
		case present[r.FullName]:
			statuses[r.FullName] = StatusDisabled
		default:
			statuses[r.FullName] = StatusDisabledMissing
		}
	}
	for _, k := range keys {
		if _, ok := statuses[k]; !ok {
			statuses[k] = StatusUninstalled
		}
	}

	m.statuses = statuses
	return cloneStatuses(statuses), nil
}

// Refresh drops cached statuses and rewrites the label and file of stored
// extensions whose code is present, so renamed extensions stay in sync.
func (m *Manager) Refresh(ctx context.Context, mapper *Mapper) error {
	m.statuses = nil

	records, err := m.store.Records(ctx)
	if err != nil {
		return fmt.Errorf("refreshing extensions: %w", err)
	}
	for _, r := range records {
		ok, err := m.container.Has(r.FullName)
		if err != nil {
			return fmt.Errorf("refreshing extensions: %w", err)
		}
		if !ok {
			continue
		}
		info, err := mapper.KeyToInfo(r.FullName)
		if err != nil {
			return fmt.Errorf("refreshing extension %s: %w", r.FullName, err)
		}
		if info.Label == r.Label && info.File == r.File && info.File == r.Name {
			continue
		}
		r.Label = info.Label
		r.File = info.File
		r.Name = info.File
		if err := m.store.Save(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func cloneStatuses(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
