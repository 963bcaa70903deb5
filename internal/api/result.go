package api

import "reflect"

// Version is the API version reported in every result.
const Version = 3

// Result is the envelope returned by Kernel.Call.
type Result struct {
	IsError      int    `json:"is_error" yaml:"is_error"`
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Version      int    `json:"version" yaml:"version"`
	Count        int    `json:"count" yaml:"count"`
	Values       any    `json:"values" yaml:"values"`
}

// Failed reports whether the result carries an error.
func (r *Result) Failed() bool {
	return r != nil && r.IsError != 0
}

func success(values any) *Result {
	if values == nil {
		values = []any{}
	}
	return &Result{Version: Version, Count: count(values), Values: values}
}

func failure(err error) *Result {
	return &Result{IsError: 1, ErrorMessage: err.Error(), Version: Version, Values: []any{}}
}

func count(values any) int {
	v := reflect.ValueOf(values)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len()
	default:
		return 1
	}
}
