// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"

	"github.com/diffeo/go-restmount/directive"
	"github.com/diffeo/go-restmount/mapper"
	"github.com/diffeo/go-restmount/restdata"
	"github.com/gorilla/mux"
)

// Request is the per-request state shared between the query parser,
// hooks, the action, and the response stage.  It lives in the HTTP
// request's context.
type Request struct {
	// HTTP is the most recent form of the underlying request.
	HTTP *http.Request

	// Params holds the URL path parameters, notably "id".
	Params map[string]string

	// Query holds the query-string parameters; after the query
	// parser runs, the where and orderBy directives are decoded
	// and with has moved to Options.
	Query mapper.Query

	// Body is the decoded request body: a map for an object,
	// a []interface{} for an array.
	Body interface{}

	// Options are passed to every Mapper call.
	Options mapper.Options

	// Result is the action's result, set before the response
	// stage runs.
	Result interface{}

	bodyRead bool
	parsed   bool
}

type contextKey int

const requestKey contextKey = iota

// FromContext returns the Request stored in ctx, or nil if there is
// none.
func FromContext(ctx context.Context) *Request {
	req, _ := ctx.Value(requestKey).(*Request)
	return req
}

// requestFor returns the Request for r, creating it if needed, along
// with an HTTP request whose context carries it.
func requestFor(r *http.Request) (*Request, *http.Request) {
	if req := FromContext(r.Context()); req != nil {
		req.HTTP = r
		return req, r
	}
	req := &Request{
		Params:  map[string]string{},
		Query:   directive.FromValues(r.URL.Query()),
		Options: mapper.Options{},
	}
	r = r.WithContext(context.WithValue(r.Context(), requestKey, req))
	req.HTTP = r
	return req, r
}

// Context returns the underlying request's context.
func (req *Request) Context() context.Context {
	return req.HTTP.Context()
}

// ID returns the "id" path parameter.
func (req *Request) ID() string {
	return req.Params["id"]
}

// setParams copies the mux path variables into the request.
func (req *Request) setParams() {
	for k, v := range mux.Vars(req.HTTP) {
		req.Params[k] = v
	}
}

// ReadBody decodes the HTTP request body into req.Body, once.  An
// empty body decodes as an empty object.
func (req *Request) ReadBody() error {
	if req.bodyRead {
		return nil
	}
	req.bodyRead = true
	if req.HTTP.Body == nil {
		req.Body = map[string]interface{}{}
		return nil
	}
	data, err := ioutil.ReadAll(req.HTTP.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		req.Body = map[string]interface{}{}
		return nil
	}
	var body interface{}
	err = restdata.Decode(req.HTTP.Header.Get("Content-Type"), bytes.NewReader(data), &body)
	if err != nil {
		return err
	}
	req.Body = body
	return nil
}

// Record returns the body as a single record.
func (req *Request) Record() (mapper.Record, error) {
	if err := req.ReadBody(); err != nil {
		return nil, err
	}
	return mapper.AsRecord(req.Body)
}

// Records returns the body as a list of records.
func (req *Request) Records() ([]mapper.Record, error) {
	if err := req.ReadBody(); err != nil {
		return nil, err
	}
	return mapper.AsRecords(req.Body)
}
