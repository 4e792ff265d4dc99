// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/diffeo/go-restmount/directive"
	"github.com/diffeo/go-restmount/mapper"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 404 Not Found error.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// StatusFor picks an HTTP status code for an error.  Errors that
// implement ErrorStatus choose their own; well-known mapper errors
// map to 400 or 404; anything else is 500 Internal Server Error.
func StatusFor(err error) int {
	if errS, hasStatus := err.(ErrorStatus); hasStatus {
		return errS.HTTPStatus()
	}
	switch err {
	case mapper.ErrNotRecord, mapper.ErrMissingID, mapper.ErrChangedID:
		return http.StatusBadRequest
	}
	switch err.(type) {
	case mapper.ErrNoSuchRecord, mapper.ErrNoSuchMapper:
		return http.StatusNotFound
	case mapper.ErrBadQuery:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// FromError populates an ErrorResponse to fill in its fields based
// on an error value.  This remaps the well-known mapper errors
// to specific e.Error codes.
func (e *ErrorResponse) FromError(err error) {
	e.Message = err.Error()
	switch err {
	case mapper.ErrNotRecord:
		e.Error = "ErrNotRecord"
	case mapper.ErrMissingID:
		e.Error = "ErrMissingID"
	case mapper.ErrChangedID:
		e.Error = "ErrChangedID"
	}
	switch et := err.(type) {
	case mapper.ErrNoSuchRecord:
		e.Error = "ErrNoSuchRecord"
		e.Resource = et.Resource
		e.Value = et.ID
	case mapper.ErrNoSuchMapper:
		e.Error = "ErrNoSuchMapper"
		e.Value = et.Name
	case mapper.ErrDuplicateMapper:
		e.Error = "ErrDuplicateMapper"
		e.Value = et.Name
	case mapper.ErrBadQuery:
		e.Error = "ErrBadQuery"
		e.Value = et.Key
		e.Detail = et.Reason
	case directive.ErrBadClause:
		e.Error = "ErrBadClause"
		e.Value = et.Key
		e.Detail = et.Clause
	case ErrNotFound:
		// Discard this wrapper and return the embedded error
		e.FromError(et.Err)
	case ErrBadRequest:
		e.FromError(et.Err)
	}
	if e.Error == "" {
		e.Error = "error"
	}
}

// ToError converts e back to a mapper error, if that is possible.
// If not, returns a plain error with e.Message text.
func (e *ErrorResponse) ToError() error {
	switch e.Error {
	case "ErrNotRecord":
		return mapper.ErrNotRecord
	case "ErrMissingID":
		return mapper.ErrMissingID
	case "ErrChangedID":
		return mapper.ErrChangedID
	case "ErrNoSuchRecord":
		return mapper.ErrNoSuchRecord{Resource: e.Resource, ID: e.Value}
	case "ErrNoSuchMapper":
		return mapper.ErrNoSuchMapper{Name: e.Value}
	case "ErrDuplicateMapper":
		return mapper.ErrDuplicateMapper{Name: e.Value}
	case "ErrBadQuery":
		return mapper.ErrBadQuery{Key: e.Value, Reason: e.Detail}
	default:
		return errors.New(e.Message)
	}
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//     defer func() {
//         if obj := recovered(); obj != nil {
//             resp := restdata.ErrorResponse{}
//             resp.FromPanic(obj)
//             // write resp out as makes sense
//         }
//    }
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Error = "panic"
	if recoveredError, isError := obj.(error); isError {
		e.Message = recoveredError.Error()
	} else {
		e.Message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	len := runtime.Stack(stack[:], false)
	e.Stack = string(stack[:len])
}

// WriteError sends err as an ErrorResponse with the status chosen by
// StatusFor.  This has the signature of an error handler in the
// restserver package and is its default.
func WriteError(resp http.ResponseWriter, req *http.Request, err error) {
	response := ErrorResponse{}
	response.FromError(err)
	resp.Header().Set("Content-Type", V1JSONMediaType)
	resp.WriteHeader(StatusFor(err))
	// The status line is already out, so there is nowhere to
	// report a failure here
	_ = Encode(resp, response)
}
