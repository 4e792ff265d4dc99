// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines the wire-level pieces shared between the
// restserver and restclient packages: media types, request body
// decoding, and the error representation.
//
// Encoding Considerations
//
// Request and response bodies are JSON.  A request body for a
// single-record operation is a JSON object; a body for a batch
// operation is a JSON array of objects.  Responses carry whatever the
// operation returned, usually a record or a list of records, or no
// body at all for 204 No Content.
//
// Errors
//
// Failing requests return an encoding of the ErrorResponse type with
// a failing HTTP status.  This can round-trip all of the mapper
// package's errors, but may return most other errors as plain strings
// that are not the same objects as other standard errors.
//
// If Go server code panics, this should be captured and returned as
// an ErrorResponse with error code "panic".
package restdata

// V1JSONMediaType is the preferred, most specific MIME type for the
// JSON representation of this content.
const V1JSONMediaType = "application/vnd.diffeo.restmount.v1+json"

// JSONMediaType requests the most recent version of the JSON
// representation of this content.
const JSONMediaType = "application/vnd.diffeo.restmount+json"

// ErrorResponse is the body of a failing HTTP response.
type ErrorResponse struct {
	// Error is a short description of the failure.  This may be
	// the name or type of a mapper API error, the string
	// "panic", or the string "error" for some other kind of
	// error.
	Error string `json:"error"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Resource names the resource involved, if applicable.
	Resource string `json:"resource,omitempty"`

	// Value is an extra parameter to the error if applicable.
	Value string `json:"value,omitempty"`

	// Detail is a second extra parameter, if applicable.
	Detail string `json:"detail,omitempty"`

	// Stack holds a formatted backtrace, if the method failed
	// due to a panic.
	Stack string `json:"stack,omitempty"`
}
