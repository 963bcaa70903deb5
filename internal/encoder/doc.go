// Package encoder renders command results as a table or as one of the
// structured formats accepted by --out.
//
// Values are converted to JSON first, so anything encoding/json can marshal
// (including types with a custom MarshalJSON that preserves key order) renders
// the same way in every format.
package encoder
