package api

import (
	"context"
	"errors"

	"github.com/civitools/cv/internal/extension"
	"github.com/civitools/cv/internal/host"
)

// LocalExtension is one value of Extension.get.
type LocalExtension struct {
	Key        string `json:"key" yaml:"key"`
	File       string `json:"file" yaml:"file"`
	Label      string `json:"label" yaml:"label"`
	Version    string `json:"version" yaml:"version"`
	Status     string `json:"status" yaml:"status"`
	DevelStage string `json:"develStage,omitempty" yaml:"develStage,omitempty"`
	Path       string `json:"path" yaml:"path"`
}

// Extension.get lists local extensions, optionally narrowed by key.
func extensionGet(ctx context.Context, rt *host.Runtime, p Params) (any, error) {
	sys, err := rt.RequireExtensions()
	if err != nil {
		return nil, err
	}
	keys, err := sys.Container.Keys()
	if err != nil {
		return nil, err
	}
	statuses, err := sys.Manager.Statuses(ctx)
	if err != nil {
		return nil, err
	}

	want := p.String("key")
	values := []LocalExtension{}
	for _, key := range keys {
		if want != "" && key != want {
			continue
		}
		info, err := sys.Mapper.KeyToInfo(key)
		if err != nil {
			return nil, err
		}
		path, err := sys.Container.Path(key)
		if err != nil {
			return nil, err
		}
		values = append(values, LocalExtension{
			Key:        key,
			File:       info.File,
			Label:      info.Label,
			Version:    info.Version,
			Status:     statuses[key],
			DevelStage: info.DevelStage,
			Path:       path,
		})
	}
	return values, nil
}

// Extension.getremote lists the remote feed.
func extensionGetRemote(ctx context.Context, rt *host.Runtime, _ Params) (any, error) {
	sys, err := rt.RequireExtensions()
	if err != nil {
		return nil, err
	}
	infos, err := sys.Browser.Extensions(ctx)
	if err != nil {
		return nil, err
	}
	if infos == nil {
		infos = []*extension.Info{}
	}
	return infos, nil
}

// Extension.refresh rescans local extensions and refetches the feed. Both
// are on unless switched off with local=0 or remote=0.
func extensionRefresh(ctx context.Context, rt *host.Runtime, p Params) (any, error) {
	sys, err := rt.RequireExtensions()
	if err != nil {
		return nil, err
	}
	opts := extension.RefreshOptions{
		Local:  p.Bool("local", true),
		Remote: p.Bool("remote", true),
	}
	if err := sys.Refresh(ctx, opts); err != nil {
		return nil, err
	}
	return []any{}, nil
}

// System.get reports the booted site.
func systemGet(_ context.Context, rt *host.Runtime, _ Params) (any, error) {
	s, err := rt.RequireSettings()
	if err != nil {
		return nil, err
	}
	return []map[string]any{{
		"version": s.Version,
		"uf":      s.UF,
		"root":    s.Root,
		"level":   string(rt.Level),
	}}, nil
}

// Setting.get returns all settings, or the one named by name.
func settingGet(_ context.Context, rt *host.Runtime, p Params) (any, error) {
	s, err := rt.RequireSettings()
	if err != nil {
		return nil, err
	}
	values := s.Values()
	name := p.String("name")
	if name == "" {
		return values, nil
	}
	v, ok := values[name]
	if !ok {
		return nil, errors.New("unknown setting " + name)
	}
	return map[string]any{name: v}, nil
}
