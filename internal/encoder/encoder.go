package encoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/civitools/cv/internal/config"
	"github.com/kballard/go-shellquote"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"go.yaml.in/yaml/v3"
)

// Output formats.
const (
	FormatTable      = "table"
	FormatJSON       = "json"
	FormatJSONStrict = "json-strict"
	FormatYAML       = "yaml"
	FormatShell      = "shell"
	FormatList       = "list"
	FormatNone       = "none"
)

var structured = []string{FormatJSON, FormatJSONStrict, FormatYAML, FormatShell, FormatList, FormatNone}

// Formats returns the structured formats, without table.
func Formats() []string {
	return slices.Clone(structured)
}

// AllFormats returns table followed by the structured formats.
func AllFormats() []string {
	return append([]string{FormatTable}, structured...)
}

// Valid reports whether name is a known format.
func Valid(name string) bool {
	return slices.Contains(AllFormats(), name)
}

// DefaultFormat returns the user's configured output format when it is
// valid, otherwise fallback.
func DefaultFormat(fallback string) string {
	if v := strings.TrimSpace(config.Get(config.KeyOutput)); v != "" && Valid(v) {
		return v
	}
	return fallback
}

// Encode writes v to w in the named format.
func Encode(w io.Writer, format string, v any) error {
	if format == FormatNone {
		return nil
	}
	if !Valid(format) {
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(AllFormats(), ", "))
	}
	if format == FormatYAML {
		return encodeYAML(w, v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}

	switch format {
	case FormatJSON:
		_, err = w.Write(pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: "  "}))
	case FormatJSONStrict:
		_, err = fmt.Fprintf(w, "%s\n", data)
	case FormatShell:
		err = encodeShell(w, gjson.ParseBytes(data))
	case FormatList:
		err = encodeList(w, gjson.ParseBytes(data))
	case FormatTable:
		headers, rows := tabulate(gjson.ParseBytes(data))
		err = Table(w, headers, rows)
	}
	return err
}

func encodeYAML(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// encodeShell prints one name='value' assignment per leaf. Nested names are
// joined with underscores.
func encodeShell(w io.Writer, doc gjson.Result) error {
	var lines []string
	flatten(doc, "", func(name string, leaf gjson.Result) {
		if name == "" {
			name = "value"
		}
		lines = append(lines, shellName(name)+"="+shellquote.Join(leafString(leaf)))
	})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// encodeList prints one line per element; object elements become tab
// separated values.
func encodeList(w io.Writer, doc gjson.Result) error {
	var items []gjson.Result
	if doc.IsArray() || doc.IsObject() {
		doc.ForEach(func(_, value gjson.Result) bool {
			items = append(items, value)
			return true
		})
	} else {
		items = append(items, doc)
	}

	for _, item := range items {
		line := leafString(item)
		if item.IsObject() {
			var cells []string
			item.ForEach(func(_, value gjson.Result) bool {
				cells = append(cells, leafString(value))
				return true
			})
			line = strings.Join(cells, "\t")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func flatten(node gjson.Result, prefix string, emit func(string, gjson.Result)) {
	if !node.IsArray() && !node.IsObject() {
		emit(prefix, node)
		return
	}
	index := 0
	node.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if node.IsArray() {
			name = strconv.Itoa(index)
			index++
		}
		if prefix != "" {
			name = prefix + "_" + name
		}
		flatten(value, name, emit)
		return true
	})
}

// leafString renders a scalar as text and a container as compact JSON.
func leafString(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	case gjson.JSON:
		return string(pretty.Ugly([]byte(v.Raw)))
	default:
		return v.Raw
	}
}

func shellName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
