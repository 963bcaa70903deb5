package inventory

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"
)

var projectRows = []Row{
	{Location: LocationRemote, Key: "org.civicrm.foo", Name: "foo.xml", Version: "1.0"},
	{Location: LocationLocal, Key: "bar", Name: "bar.xml", Version: "2.0", Status: "installed"},
}

func TestProjectColumns(t *testing.T) {
	for _, columns := range [][]string{{"key", "status"}, {"status", "key"}} {
		recs := Project(projectRows, columns)
		if len(recs) != len(projectRows) {
			t.Fatalf("Project() returned %d records", len(recs))
		}
		for i, rec := range recs {
			if !reflect.DeepEqual(rec.Columns(), columns) {
				t.Errorf("Columns() = %v, want %v", rec.Columns(), columns)
			}
			if rec.Get("key") != projectRows[i].Key || rec.Get("status") != projectRows[i].Status {
				t.Errorf("record %d = %v, want row %+v", i, rec.Values(), projectRows[i])
			}
			if rec.Has("name") || rec.Has("location") {
				t.Errorf("record %d carries unrequested columns", i)
			}

			data, err := json.Marshal(rec)
			if err != nil {
				t.Fatal(err)
			}
			var decoded map[string]string
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatal(err)
			}
			want := map[string]string{"key": projectRows[i].Key, "status": projectRows[i].Status}
			if !reflect.DeepEqual(decoded, want) {
				t.Errorf("JSON = %s, want fields %v", data, want)
			}
		}
	}
}

func TestProjectKeepsColumnOrder(t *testing.T) {
	recs := Project(projectRows[1:], []string{"status", "version", "key"})

	data, err := json.Marshal(recs[0])
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"status":"installed","version":"2.0","key":"bar"}`; got != want {
		t.Errorf("JSON = %s, want %s", got, want)
	}

	out, err := yaml.Marshal(recs)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	if !(strings.Index(text, "status:") < strings.Index(text, "version:") &&
		strings.Index(text, "version:") < strings.Index(text, "key:")) {
		t.Errorf("YAML keys out of order:\n%s", text)
	}
	var decoded []map[string]any
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	if v, ok := decoded[0]["version"].(string); !ok || v != "2.0" {
		t.Errorf("version decoded as %#v, want string 2.0", decoded[0]["version"])
	}
}

func TestProjectUnknownAndDottedColumns(t *testing.T) {
	recs := Project(projectRows[:1], []string{"key", "bogus", "a.b"})
	if recs[0].Get("bogus") != "" || !recs[0].Has("bogus") {
		t.Errorf("unknown column = %q", recs[0].Get("bogus"))
	}
	data, err := json.Marshal(recs[0])
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"key":"org.civicrm.foo","bogus":"","a.b":""}`; got != want {
		t.Errorf("JSON = %s, want %s", got, want)
	}
}

func TestTable(t *testing.T) {
	got := Table(projectRows, DefaultColumns)
	want := [][]string{
		{"remote", "org.civicrm.foo", "foo.xml", "1.0", ""},
		{"local", "bar", "bar.xml", "2.0", "installed"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Table() = %v, want %v", got, want)
	}
}

func TestParseColumns(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", DefaultColumns},
		{" , ", DefaultColumns},
		{"key,status", []string{"key", "status"}},
		{" name , key ,", []string{"name", "key"}},
	}
	for _, tt := range tests {
		if got := ParseColumns(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseColumns(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if !strings.EqualFold(string(LocationRemote), "remote") {
		t.Error("unexpected remote location name")
	}
}
