package dsl

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Query is a compiled query document. Its bytes are canonical and are sent
// to the search engine as-is.
type Query []byte

func (q Query) String() string { return string(q) }

// Bytes returns a copy of the document.
func (q Query) Bytes() []byte {
	return append([]byte(nil), q...)
}

// Get looks up a gjson path within the document.
func (q Query) Get(path string) gjson.Result {
	return gjson.GetBytes(q, path)
}

// Field returns the field name of a term predicate, avoiding path escaping.
func (q Query) Field() string {
	var field string
	q.Get("term").ForEach(func(key, _ gjson.Result) bool {
		field = key.String()
		return false
	})
	return field
}

// Value returns the raw literal of a term predicate.
func (q Query) Value() string {
	var raw string
	q.Get("term").ForEach(func(_, body gjson.Result) bool {
		raw = body.Get("value").Raw
		return false
	})
	return raw
}

// Pretty returns an indented rendering for humans. Do not send it anywhere
// that expects canonical bytes.
func (q Query) Pretty() []byte {
	return pretty.Pretty(q)
}
