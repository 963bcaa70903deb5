package inventory

import (
	"strings"

	"github.com/tidwall/sjson"
	"go.yaml.in/yaml/v3"
)

// Record is a row projected onto an ordered column list. It encodes as an
// object whose keys keep the column order.
type Record struct {
	columns []string
	values  []string
}

// Project maps rows onto columns, in the order given. Unknown columns are
// present with an empty value.
func Project(rows []Row, columns []string) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		values := make([]string, len(columns))
		for i, c := range columns {
			values[i] = r.Field(c)
		}
		out = append(out, Record{columns: columns, values: values})
	}
	return out
}

// Table returns the rows as string cells, one slice per row.
func Table(rows []Row, columns []string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, rec := range Project(rows, columns) {
		out = append(out, rec.Values())
	}
	return out
}

// Columns returns the record's column names.
func (r Record) Columns() []string { return append([]string(nil), r.columns...) }

// Values returns the record's values in column order.
func (r Record) Values() []string { return append([]string(nil), r.values...) }

// Get returns the value of column, or "" when the record does not carry it.
func (r Record) Get(column string) string {
	for i, c := range r.columns {
		if c == column {
			return r.values[i]
		}
	}
	return ""
}

// Has reports whether the record carries column.
func (r Record) Has(column string) bool {
	for _, c := range r.columns {
		if c == column {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the record as an object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	doc := []byte(`{}`)
	var err error
	for i, c := range r.columns {
		doc, err = sjson.SetBytes(doc, escapePath(c), r.values[i])
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// MarshalYAML encodes the record as a mapping in column order.
func (r Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i, c := range r.columns {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.values[i]},
		)
	}
	return node, nil
}

// escapePath quotes the characters sjson treats as path syntax so a column
// name is always a single literal key.
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
