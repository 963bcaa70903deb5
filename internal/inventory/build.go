package inventory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
)

// Options selects the rows of a listing. When neither Remote nor Local is
// set, both locations are listed.
type Options struct {
	Remote bool
	Local  bool
	Filter string // delimited regular expression; empty means no filter
}

func (o Options) normalized() Options {
	if !o.Remote && !o.Local {
		o.Remote, o.Local = true, true
	}
	return o
}

// Build queries src and returns the sorted listing. Any source error aborts
// the build; no partial listing is returned.
func Build(ctx context.Context, src Source, opts Options) ([]Row, error) {
	opts = opts.normalized()

	var pattern *Pattern
	if strings.TrimSpace(opts.Filter) != "" {
		p, err := CompilePattern(opts.Filter)
		if err != nil {
			return nil, err
		}
		pattern = p
	}

	var rows []Row
	if opts.Remote {
		remote, err := remoteRows(ctx, src)
		if err != nil {
			return nil, err
		}
		rows = append(rows, remote...)
	}
	if opts.Local {
		local, err := localRows(ctx, src)
		if err != nil {
			return nil, err
		}
		rows = append(rows, local...)
	}

	if pattern != nil {
		filtered, err := filterRows(rows, pattern)
		if err != nil {
			return nil, err
		}
		rows = filtered
	}

	Sort(rows)
	return rows, nil
}

// Sort orders rows by location descending, then name and key ascending.
func Sort(rows []Row) {
	slices.SortStableFunc(rows, compareRows)
}

func compareRows(a, b Row) int {
	if c := cmp.Compare(b.Location, a.Location); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}

func remoteRows(ctx context.Context, src Source) ([]Row, error) {
	catalog, err := src.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching remote catalog: %w", err)
	}
	rows := make([]Row, 0, len(catalog))
	for _, e := range catalog {
		rows = append(rows, Row{
			Location: LocationRemote,
			Key:      e.Key,
			Name:     e.Name,
			Version:  e.Version,
		})
	}
	return rows, nil
}

func localRows(ctx context.Context, src Source) ([]Row, error) {
	keys, err := src.ListLocalKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing local extensions: %w", err)
	}
	statuses, err := src.GetStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading extension statuses: %w", err)
	}

	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		meta, err := src.ResolveMetadata(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", key, err)
		}
		rows = append(rows, Row{
			Location: LocationLocal,
			Key:      key,
			Name:     meta.Name,
			Version:  meta.Version,
			Status:   statuses[key],
		})
	}
	return rows, nil
}

func filterRows(rows []Row, p *Pattern) ([]Row, error) {
	kept := rows[:0:0]
	for _, r := range rows {
		ok, err := p.MatchString(r.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			if ok, err = p.MatchString(r.Name); err != nil {
				return nil, err
			}
		}
		if ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}
