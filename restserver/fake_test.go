// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/diffeo/go-restmount/restdata"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call records one invocation of a fakeMapper method.
type call struct {
	Method  string
	ID      string
	Query   mapper.Query
	Props   interface{}
	Options mapper.Options
}

// fakeMapper records every call and returns canned records.
type fakeMapper struct {
	name     string
	endpoint string

	lock  sync.Mutex
	calls []call

	// Err, if set, is returned from every call.
	Err error
}

func newFakeMapper(name string) *fakeMapper {
	return &fakeMapper{name: name}
}

func (m *fakeMapper) record(c call) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.calls = append(m.calls, c)
	return m.Err
}

// Calls returns the names of the methods called so far.
func (m *fakeMapper) Calls() []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	names := make([]string, len(m.calls))
	for i, c := range m.calls {
		names[i] = c.Method
	}
	return names
}

// Last returns the most recent call.
func (m *fakeMapper) Last() call {
	m.lock.Lock()
	defer m.lock.Unlock()
	if len(m.calls) == 0 {
		return call{}
	}
	return m.calls[len(m.calls)-1]
}

func (m *fakeMapper) Name() string     { return m.name }
func (m *fakeMapper) Endpoint() string { return m.endpoint }

func (m *fakeMapper) FindAll(ctx context.Context, query mapper.Query, opts mapper.Options) ([]mapper.Record, error) {
	if err := m.record(call{Method: "findAll", Query: query, Options: opts}); err != nil {
		return nil, err
	}
	return []mapper.Record{{"id": "1", "from": m.name}}, nil
}

func (m *fakeMapper) Find(ctx context.Context, id string, opts mapper.Options) (mapper.Record, error) {
	if err := m.record(call{Method: "find", ID: id, Options: opts}); err != nil {
		return nil, err
	}
	return mapper.Record{"id": id, "from": m.name}, nil
}

func (m *fakeMapper) Create(ctx context.Context, props mapper.Record, opts mapper.Options) (mapper.Record, error) {
	if err := m.record(call{Method: "create", Props: props, Options: opts}); err != nil {
		return nil, err
	}
	return props.Clone().Merge(mapper.Record{"id": "new"}), nil
}

func (m *fakeMapper) CreateMany(ctx context.Context, records []mapper.Record, opts mapper.Options) ([]mapper.Record, error) {
	if err := m.record(call{Method: "createMany", Props: records, Options: opts}); err != nil {
		return nil, err
	}
	return records, nil
}

func (m *fakeMapper) Update(ctx context.Context, id string, props mapper.Record, opts mapper.Options) (mapper.Record, error) {
	if err := m.record(call{Method: "update", ID: id, Props: props, Options: opts}); err != nil {
		return nil, err
	}
	return props.Clone().Merge(mapper.Record{"id": id}), nil
}

func (m *fakeMapper) UpdateAll(ctx context.Context, props mapper.Record, query mapper.Query, opts mapper.Options) ([]mapper.Record, error) {
	if err := m.record(call{Method: "updateAll", Props: props, Query: query, Options: opts}); err != nil {
		return nil, err
	}
	return []mapper.Record{props}, nil
}

func (m *fakeMapper) UpdateMany(ctx context.Context, records []mapper.Record, opts mapper.Options) ([]mapper.Record, error) {
	if err := m.record(call{Method: "updateMany", Props: records, Options: opts}); err != nil {
		return nil, err
	}
	return records, nil
}

func (m *fakeMapper) Destroy(ctx context.Context, id string, opts mapper.Options) error {
	return m.record(call{Method: "destroy", ID: id, Options: opts})
}

func (m *fakeMapper) DestroyAll(ctx context.Context, query mapper.Query, opts mapper.Options) error {
	return m.record(call{Method: "destroyAll", Query: query, Options: opts})
}

// ToJSON wraps results so tests can tell whether it ran.
func (m *fakeMapper) ToJSON(result interface{}, opts mapper.Options) (interface{}, error) {
	return map[string]interface{}{"serialized": m.name, "data": result}, nil
}

// fakeContainer is a fixed set of fakeMappers.
type fakeContainer map[string]*fakeMapper

func (c fakeContainer) Mappers() map[string]mapper.Mapper {
	mappers := make(map[string]mapper.Mapper, len(c))
	for name, m := range c {
		mappers[name] = m
	}
	return mappers
}

// nullConfig returns a Config whose logger discards everything.
func nullConfig() Config {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return Config{Logger: logger}
}

// do sends a request through h and returns the recorded response.
func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

// decodeBody decodes a JSON response body.
func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) interface{} {
	var body interface{}
	err := restdata.Decode(resp.Header().Get("Content-Type"), resp.Body, &body)
	require.NoError(t, err)
	return body
}

// assertErrorResponse checks that resp is an ErrorResponse with the
// given status and error code.
func assertErrorResponse(t *testing.T, resp *httptest.ResponseRecorder, status int, code string) {
	assert.Equal(t, status, resp.Code)
	var er restdata.ErrorResponse
	err := restdata.Decode(resp.Header().Get("Content-Type"), resp.Body, &er)
	if assert.NoError(t, err) {
		assert.Equal(t, code, er.Error)
	}
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

type failResponseWriter struct {
	Headers    http.Header
	StatusCode int
}

func (rw *failResponseWriter) Header() http.Header {
	if rw.Headers == nil {
		rw.Headers = make(http.Header)
	}
	return rw.Headers
}

func (rw *failResponseWriter) Write([]byte) (int, error) {
	return 0, errors.New("foo")
}

func (rw *failResponseWriter) WriteHeader(code int) {
	rw.StatusCode = code
}
