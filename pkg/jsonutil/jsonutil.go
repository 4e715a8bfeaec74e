// Package jsonutil wraps github.com/go-json-experiment/json for the
// encodings the corpus depends on: byte-stable pretty printing for fixture
// files and order-preserving object streaming for manifests.
//
// Usage:
//
//	data, err := jsonutil.MarshalIndent(record, "", "  ")
//	err = jsonutil.EachMember(r, func(key string, v jsontext.Value) error { ... })
package jsonutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// ErrNotObject is returned by EachMember when the input is not a JSON object.
var ErrNotObject = errors.New("jsonutil: not a JSON object")

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the JSON encoding of v. Map keys are sorted so that equal
// values always encode to equal bytes.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true))
}

// MarshalIndent returns the indented, deterministic JSON encoding of v.
// The prefix is accepted for encoding/json parity and ignored.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true), jsontext.WithIndent(indent))
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}

// EachMember reads one JSON object from r and calls fn for every member in
// document order. Go maps lose that order; manifests rely on it.
func EachMember(r io.Reader, fn func(key string, value jsontext.Value) error) error {
	dec := jsontext.NewDecoder(r)

	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() != '{' {
		return fmt.Errorf("%w: found %v", ErrNotObject, tok.Kind())
	}

	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return err
		}
		value, err := dec.ReadValue()
		if err != nil {
			return err
		}
		// ReadValue reuses its buffer on the next read.
		if err := fn(name.String(), value.Clone()); err != nil {
			return err
		}
	}

	_, err = dec.ReadToken()
	return err
}

// EachMemberValue is EachMember over an already-read value.
func EachMemberValue(value jsontext.Value, fn func(key string, value jsontext.Value) error) error {
	return EachMember(bytes.NewReader(value), fn)
}
