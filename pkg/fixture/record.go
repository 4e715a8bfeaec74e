// Package fixture builds the corpus of page snapshots and reads it back.
//
// A fixture is one JSON document per test case, stored at
// <dir>/<slug(category)>/<slug(title)>.json. Files are pretty-printed with
// a two space indent and end in a newline, so a rebuild against the same
// capturer output is byte-identical.
package fixture

import (
	"fmt"

	"github.com/waftester/a11ycorpus/pkg/jsonutil"
	"github.com/waftester/a11ycorpus/pkg/snapshot"
)

// Record is a persisted fixture. Category holds the category as declared in
// the manifest; its slug names the directory.
type Record struct {
	ID       string        `json:"id"`
	Category string        `json:"category"`
	Title    string        `json:"title"`
	Page     snapshot.Page `json:"page"`
}

// Encode renders r in the on-disk format.
func Encode(r Record) ([]byte, error) {
	data, err := jsonutil.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode fixture %s: %w", r.ID, err)
	}
	return append(data, '\n'), nil
}

// Decode parses a fixture file.
func Decode(data []byte) (Record, error) {
	var r Record
	if err := jsonutil.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode fixture: %w", err)
	}
	return r, nil
}
