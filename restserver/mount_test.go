// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-restmount/mapper"
	"github.com/diffeo/go-restmount/memory"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/negroni"
)

func TestMountNotContainer(t *testing.T) {
	r := mux.NewRouter()
	_, err := MountPath(r, newFakeMapper("user"), "/api")
	assert.Equal(t, ErrNotContainer, err)
	_, err = MountPath(r, nil, "/api")
	assert.Equal(t, ErrNotContainer, err)
}

func TestMountPrefix(t *testing.T) {
	assert.Equal(t, "", mountPrefix(""))
	assert.Equal(t, "", mountPrefix("/"))
	assert.Equal(t, "/api", mountPrefix("/api"))
	assert.Equal(t, "/api", mountPrefix("/api/"))
	assert.Equal(t, "/api", mountPrefix("api"))
}

// TestMountTwoResources mounts a container with two members and checks
// that each member sees exactly the request sent to it.
func TestMountTwoResources(t *testing.T) {
	user := newFakeMapper("user")
	todo := newFakeMapper("todo")
	r := mux.NewRouter()
	_, err := MountPath(r, fakeContainer{"user": user, "todo": todo}, "/api")
	require.NoError(t, err)

	resp := do(t, r, "GET", "/api/user", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"findAll"}, user.Calls())
	assert.Empty(t, todo.Calls())

	resp = do(t, r, "POST", "/api/todo", `{"title":"x"}`)
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, []string{"findAll"}, user.Calls())
	assert.Equal(t, []string{"create"}, todo.Calls())

	resp = do(t, r, "GET", "/user", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMountRoot(t *testing.T) {
	user := newFakeMapper("user")
	r := mux.NewRouter()
	_, err := Mount(r, fakeContainer{"user": user}, nullConfig())
	require.NoError(t, err)

	resp := do(t, r, "DELETE", "/user/5", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "5", user.Last().ID)
}

// TestMountSegmentPrefix checks that a mount only claims whole path
// segments under its prefix.
func TestMountSegmentPrefix(t *testing.T) {
	user := newFakeMapper("user")
	r := mux.NewRouter()
	_, err := MountPath(r, fakeContainer{"user": user}, "/api")
	require.NoError(t, err)
	r.HandleFunc("/apiary/hives", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	resp := do(t, r, "GET", "/apiary/hives", "")
	assert.Equal(t, http.StatusTeapot, resp.Code)
	assert.Empty(t, user.Calls())

	resp = do(t, r, "GET", "/api/user", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = do(t, r, "GET", "/api", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, []string{"findAll"}, user.Calls())
}

// TestMountNegativeOffset checks that a bad paging value is a client
// error.
func TestMountNegativeOffset(t *testing.T) {
	c := memory.New()
	_, err := c.DefineMapper(mapper.Definition{Name: "user"})
	require.NoError(t, err)
	r := mux.NewRouter()
	_, err = MountPath(r, c, "/api")
	require.NoError(t, err)

	resp := do(t, r, "GET", "/api/user?offset=-1", "")
	assertErrorResponse(t, resp, http.StatusBadRequest, "ErrBadQuery")
}

func TestMountTwice(t *testing.T) {
	user := newFakeMapper("user")
	c := fakeContainer{"user": user}
	r := mux.NewRouter()
	_, err := MountPath(r, c, "/v1")
	require.NoError(t, err)
	cfg := nullConfig()
	cfg.Path = "/v2"
	cfg.ToJSONMode = ToJSONRaw
	_, err = Mount(r, c, cfg)
	require.NoError(t, err)

	resp := do(t, r, "GET", "/v1/user/1", "")
	assert.Contains(t, decodeBody(t, resp), "serialized")
	resp = do(t, r, "GET", "/v2/user/1", "")
	assert.Equal(t, map[string]interface{}{"id": "1", "from": "user"}, decodeBody(t, resp))
}

func TestMountQueryDirectives(t *testing.T) {
	user := newFakeMapper("user")
	r := mux.NewRouter()
	_, err := MountPath(r, fakeContainer{"user": user}, "/api")
	require.NoError(t, err)

	values := url.Values{
		"where":   {`{"role":"admin"}`},
		"sort":    {`["name","DESC"]`},
		"with":    {"posts", "comments"},
		"country": {"nz"},
	}
	resp := do(t, r, "GET", "/api/user?"+values.Encode(), "")
	assert.Equal(t, http.StatusOK, resp.Code)
	last := user.Last()
	assert.Equal(t, mapper.Query{
		"where":   map[string]interface{}{"role": "admin"},
		"orderBy": []interface{}{[]interface{}{"name", "DESC"}},
		"country": "nz",
	}, last.Query)
	assert.Equal(t, mapper.Options{
		"with": []interface{}{"posts", "comments"},
	}, last.Options)

	// with reaches operations that take no query
	resp = do(t, r, "GET", "/api/user/4?with=posts", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, mapper.Options{"with": "posts"}, user.Last().Options)
}

func TestMountMalformedWhere(t *testing.T) {
	user := newFakeMapper("user")
	r := mux.NewRouter()
	_, err := MountPath(r, fakeContainer{"user": user}, "/")
	require.NoError(t, err)

	resp := do(t, r, "GET", "/user?"+url.Values{"where": {"not-json"}}.Encode(), "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, mapper.Query{"where": "not-json"}, user.Last().Query)
}

func TestMountMalformedOrderBy(t *testing.T) {
	user := newFakeMapper("user")
	r := mux.NewRouter()
	_, err := MountPath(r, fakeContainer{"user": user}, "/")
	require.NoError(t, err)

	resp := do(t, r, "GET", "/user?"+url.Values{"orderBy": {"bad-json{"}}.Encode(), "")
	assertErrorResponse(t, resp, http.StatusBadRequest, "ErrBadClause")
	assert.Empty(t, user.Calls())
}

func TestNewServer(t *testing.T) {
	user := newFakeMapper("user")
	cfg := nullConfig()
	cfg.Path = "/api"
	h, err := NewServer(fakeContainer{"user": user}, cfg)
	require.NoError(t, err)
	resp := do(t, h, "PUT", "/api/user/2", `{"name":"y"}`)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"update"}, user.Calls())
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	mock := clock.NewMock()
	rl := &RequestLogger{Logger: logger, Clock: mock}
	n := negroni.New(rl)
	n.UseHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	do(t, n, "GET", "/missing", "")
	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, http.StatusNotFound, entry.Data["status"])
		assert.Equal(t, "/missing", entry.Data["path"])
	}
}

func TestNegotiateResponse(t *testing.T) {
	tests := []struct {
		accept string
		want   string
		ok     bool
	}{
		{"", "application/json", true},
		{"*/*", "application/json", true},
		{"text/*", "text/json", true},
		{"application/json", "application/json", true},
		{"text/html;q=0.9, application/vnd.diffeo.restmount.v1+json", "application/vnd.diffeo.restmount.v1+json", true},
		{"text/html", "", false},
	}
	for _, tt := range tests {
		req, err := http.NewRequest("GET", "/", nil)
		require.NoError(t, err)
		if tt.accept != "" {
			req.Header.Set("Accept", tt.accept)
		}
		got, err := negotiateResponse(req)
		if tt.ok {
			assert.NoError(t, err, tt.accept)
			assert.Equal(t, tt.want, got, tt.accept)
		} else {
			assert.Error(t, err, tt.accept)
			assert.Equal(t, "application/json", responseType(req))
		}
	}
}
