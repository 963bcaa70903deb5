package inventory

import (
	"context"
	"fmt"
)

// fakeSource is an in-memory Source that counts catalog fetches.
type fakeSource struct {
	catalog  []Entry
	keys     []string
	statuses map[string]string
	meta     map[string]Entry

	catalogErr  error
	keysErr     error
	statusesErr error

	catalogCalls int
	keysCalls    int
}

func (f *fakeSource) FetchCatalog(context.Context) ([]Entry, error) {
	f.catalogCalls++
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.catalog, nil
}

func (f *fakeSource) ListLocalKeys(context.Context) ([]string, error) {
	f.keysCalls++
	if f.keysErr != nil {
		return nil, f.keysErr
	}
	return f.keys, nil
}

func (f *fakeSource) GetStatuses(context.Context) (map[string]string, error) {
	if f.statusesErr != nil {
		return nil, f.statusesErr
	}
	return f.statuses, nil
}

func (f *fakeSource) ResolveMetadata(_ context.Context, key string) (Entry, error) {
	e, ok := f.meta[key]
	if !ok {
		return Entry{}, fmt.Errorf("unknown extension %q", key)
	}
	return e, nil
}

// scenarioSource is one remote extension and one installed local extension.
func scenarioSource() *fakeSource {
	return &fakeSource{
		catalog:  []Entry{{Key: "org.civicrm.foo", Name: "foo.xml", Version: "1.0"}},
		keys:     []string{"bar"},
		statuses: map[string]string{"bar": "installed"},
		meta:     map[string]Entry{"bar": {Key: "bar", Name: "bar.xml", Version: "2.0"}},
	}
}

// mixedSource has two extensions in each location.
func mixedSource() *fakeSource {
	return &fakeSource{
		catalog: []Entry{
			{Key: "org.example.zeta", Name: "alpha", Version: "1.0"},
			{Key: "org.example.beta", Name: "mail", Version: "2.1"},
		},
		keys:     []string{"org.example.mail", "org.example.alpha"},
		statuses: map[string]string{"org.example.mail": "installed"},
		meta: map[string]Entry{
			"org.example.mail":  {Key: "org.example.mail", Name: "mail", Version: "3.0"},
			"org.example.alpha": {Key: "org.example.alpha", Name: "alpha", Version: "0.9"},
		},
	}
}
