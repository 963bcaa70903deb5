package inventory

import "strings"

// Location identifies where a row came from.
type Location string

const (
	LocationRemote Location = "remote"
	LocationLocal  Location = "local"
)

// Column names understood by Row.Field.
const (
	ColumnLocation = "location"
	ColumnKey      = "key"
	ColumnName     = "name"
	ColumnVersion  = "version"
	ColumnStatus   = "status"
)

// DefaultColumns is the column set shown when none is requested.
var DefaultColumns = []string{ColumnLocation, ColumnKey, ColumnName, ColumnVersion, ColumnStatus}

// Row is one extension as seen from one location. Status is only set for
// local rows.
type Row struct {
	Location Location `json:"location" yaml:"location"`
	Key      string   `json:"key" yaml:"key"`
	Name     string   `json:"name" yaml:"name"`
	Version  string   `json:"version" yaml:"version"`
	Status   string   `json:"status" yaml:"status"`
}

// Field returns the value of the named column, or "" for unknown columns.
func (r Row) Field(column string) string {
	switch column {
	case ColumnLocation:
		return string(r.Location)
	case ColumnKey:
		return r.Key
	case ColumnName:
		return r.Name
	case ColumnVersion:
		return r.Version
	case ColumnStatus:
		return r.Status
	default:
		return ""
	}
}

// ParseColumns splits a comma separated column list. Blank entries are
// dropped; an empty list yields DefaultColumns.
func ParseColumns(s string) []string {
	var cols []string
	for _, part := range strings.Split(s, ",") {
		if c := strings.TrimSpace(part); c != "" {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return append([]string(nil), DefaultColumns...)
	}
	return cols
}
