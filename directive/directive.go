// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package directive turns stringly-typed HTTP query parameters into
// structured query directives.
//
// Three query-string conventions are understood:
//
//     where=<JSON object>
//
// A JSON-encoded filter.  If the text is not valid JSON it is passed
// along as the original string, and no error is reported; the backend
// gets to decide what a string filter means.
//
//     orderBy=<clause>&orderBy=<clause>...
//     sort=<clause>...
//
// Sort clauses.  Each clause is a bare field name, or JSON text such
// as ["name","DESC"] or {"name":"DESC"}.  sort is a legacy alias; the
// parsed result always uses orderBy.  Unlike where, a clause that
// looks like JSON but does not decode is an error.
//
//     with=<relation>&with=<relation>...
//
// Related resources to load.  This is moved out of the query into
// separate options by Extract.
//
// Every other parameter passes through unchanged.
package directive

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/ugorji/go/codec"
)

// ErrBadClause is returned from Parse when an orderBy or sort clause
// looks like JSON but cannot be decoded.
type ErrBadClause struct {
	Key    string
	Clause string
	Err    error
}

func (e ErrBadClause) Error() string {
	return fmt.Sprintf("Invalid %v clause %q: %v", e.Key, e.Clause, e.Err)
}

// HTTPStatus returns a fixed 400 Bad Request error code.
func (e ErrBadClause) HTTPStatus() int {
	return http.StatusBadRequest
}

// jsonHandle decodes JSON objects as map[string]interface{}, which is
// what the rest of the system expects a record or filter to be.
var jsonHandle = func() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return h
}()

// ErrTrailingData is returned from DecodeJSON when the text holds
// more than one JSON value.
var ErrTrailingData = errors.New("trailing data after JSON value")

// DecodeJSON decodes JSON text into an arbitrary value.  The text must
// hold exactly one JSON value, optionally surrounded by whitespace.
func DecodeJSON(text string, out interface{}) error {
	decoder := codec.NewDecoderBytes([]byte(text), jsonHandle)
	if err := decoder.Decode(out); err != nil {
		return err
	}
	var extra interface{}
	if err := decoder.Decode(&extra); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}

// Extract moves the "with" directive out of query and into a fresh
// options map.  The value is moved as-is, whatever its type.  The
// input query is not modified.
func Extract(query mapper.Query) (mapper.Query, mapper.Options) {
	result := make(mapper.Query, len(query))
	opts := mapper.Options{}
	for key, value := range query {
		if key == "with" {
			opts["with"] = value
			continue
		}
		result[key] = value
	}
	return result, opts
}

// Parse decodes the where and orderBy/sort directives in query,
// returning a new query.  The input is not modified.  If there is
// nothing to parse the result is equal to the input.
func Parse(query mapper.Query) (mapper.Query, error) {
	result := make(mapper.Query, len(query))
	for key, value := range query {
		result[key] = value
	}

	if where, isString := result["where"].(string); isString && where != "" {
		var decoded interface{}
		// Malformed filters stay strings
		if err := DecodeJSON(where, &decoded); err == nil {
			result["where"] = decoded
		}
	}

	key := "orderBy"
	orderBy := result[key]
	if orderBy == nil {
		key = "sort"
		orderBy = result[key]
	}
	if isEmpty(orderBy) {
		return result, nil
	}

	clauses := asClauses(orderBy)
	parsed := make([]interface{}, len(clauses))
	for i, clause := range clauses {
		text, isString := clause.(string)
		if !isString || !looksLikeJSON(text) {
			parsed[i] = clause
			continue
		}
		var decoded interface{}
		if err := DecodeJSON(text, &decoded); err != nil {
			return nil, ErrBadClause{Key: key, Clause: text, Err: err}
		}
		parsed[i] = decoded
	}
	result["orderBy"] = parsed
	delete(result, "sort")
	return result, nil
}

// FromValues converts a parsed URL query string into a Query.  Keys
// with a single value map to that string; repeated keys map to a list
// of strings.
func FromValues(values url.Values) mapper.Query {
	query := make(mapper.Query, len(values))
	for key, list := range values {
		switch len(list) {
		case 0:
			query[key] = ""
		case 1:
			query[key] = list[0]
		default:
			items := make([]interface{}, len(list))
			for i, item := range list {
				items[i] = item
			}
			query[key] = items
		}
	}
	return query
}

// isEmpty reports whether an orderBy value is absent or a zero-length
// sequence.
func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Array:
		return v.Len() == 0
	}
	return false
}

// asClauses views an orderBy value as a list of clauses.  A lone
// value is a one-element list.
func asClauses(value interface{}) []interface{} {
	switch v := value.(type) {
	case []interface{}:
		return v
	case []string:
		clauses := make([]interface{}, len(v))
		for i, s := range v {
			clauses[i] = s
		}
		return clauses
	default:
		return []interface{}{value}
	}
}

// looksLikeJSON decides whether a clause string is JSON text rather
// than a bare field name.  Field names never carry JSON structural
// characters, so any of them marks the string as JSON, well-formed or
// not.
func looksLikeJSON(text string) bool {
	return strings.ContainsAny(text, `[]{}"`)
}
