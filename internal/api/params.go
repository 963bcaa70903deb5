package api

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Params holds call parameters as a JSON object.
type Params struct {
	raw string
}

// NewParams wraps a JSON object. An empty string yields no parameters.
func NewParams(raw string) (Params, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Params{raw: "{}"}, nil
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return Params{}, fmt.Errorf("parameters must be a JSON object")
	}
	return Params{raw: raw}, nil
}

// ParseParams builds parameters from key=value arguments. Dotted keys nest;
// values that are valid JSON keep their type, anything else is a string.
func ParseParams(args []string) (Params, error) {
	doc := "{}"
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return Params{}, fmt.Errorf("malformed parameter %q (want key=value)", arg)
		}

		var err error
		if value != "" && gjson.Valid(value) {
			doc, err = sjson.SetRaw(doc, key, value)
		} else {
			doc, err = sjson.Set(doc, key, value)
		}
		if err != nil {
			return Params{}, fmt.Errorf("parameter %q: %w", key, err)
		}
	}
	return Params{raw: doc}, nil
}

// Get returns the value at path.
func (p Params) Get(path string) gjson.Result {
	return gjson.Get(p.JSON(), path)
}

// String returns the value at path as a string, or "".
func (p Params) String(path string) string {
	return p.Get(path).String()
}

// Bool returns the value at path as a boolean, or def when absent. Strings
// such as "0" and "false" are false.
func (p Params) Bool(path string, def bool) bool {
	v := p.Get(path)
	if !v.Exists() {
		return def
	}
	return v.Bool()
}

// JSON returns the parameters as a JSON object.
func (p Params) JSON() string {
	if p.raw == "" {
		return "{}"
	}
	return p.raw
}

// MarshalJSON embeds the parameters verbatim.
func (p Params) MarshalJSON() ([]byte, error) {
	return []byte(p.JSON()), nil
}
