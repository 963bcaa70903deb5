package encoder

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/tidwall/gjson"
)

// Table renders rows under headers as a bordered text table.
func Table(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
	return nil
}

// tabulate turns a decoded document into headers and cells. A list of
// objects gets one column per key in order of first appearance; a single
// object becomes a key/value table.
func tabulate(doc gjson.Result) ([]string, [][]string) {
	switch {
	case doc.IsArray():
		var headers []string
		seen := map[string]bool{}
		var records []map[string]string
		doc.ForEach(func(_, item gjson.Result) bool {
			rec := map[string]string{}
			if item.IsObject() {
				item.ForEach(func(key, value gjson.Result) bool {
					k := key.String()
					if !seen[k] {
						seen[k] = true
						headers = append(headers, k)
					}
					rec[k] = leafString(value)
					return true
				})
			} else {
				if !seen["value"] {
					seen["value"] = true
					headers = append(headers, "value")
				}
				rec["value"] = leafString(item)
			}
			records = append(records, rec)
			return true
		})
		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			row := make([]string, len(headers))
			for i, h := range headers {
				row[i] = rec[h]
			}
			rows = append(rows, row)
		}
		return headers, rows
	case doc.IsObject():
		var rows [][]string
		doc.ForEach(func(key, value gjson.Result) bool {
			rows = append(rows, []string{key.String(), leafString(value)})
			return true
		})
		return []string{"key", "value"}, rows
	default:
		return []string{"value"}, [][]string{{leafString(doc)}}
	}
}
