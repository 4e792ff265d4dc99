// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterNotComponent(t *testing.T) {
	_, err := NewRouter("user", nullConfig())
	assert.Equal(t, ErrNotComponent, err)
	_, err = NewRouter(nil, nullConfig())
	assert.Equal(t, ErrNotComponent, err)
}

func TestRouterSingleMapper(t *testing.T) {
	m := newFakeMapper("user")
	rt, err := NewRouter(m, nullConfig())
	require.NoError(t, err)

	resp := do(t, rt, "GET", "/", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = do(t, rt, "GET", "/17", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = do(t, rt, "PUT", "/17", `{"name":"x"}`)
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = do(t, rt, "DELETE", "/17", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = do(t, rt, "DELETE", "/", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	assert.Equal(t, []string{"findAll", "find", "update", "destroy", "destroyAll"}, m.Calls())
	assert.Equal(t, "17", m.calls[1].ID)
	assert.Equal(t, mapper.Record{"name": "x"}, m.calls[2].Props)
}

// TestRouterBodyShape checks that collection POST and PUT pick the
// batch operation for array bodies and the single one otherwise.
func TestRouterBodyShape(t *testing.T) {
	m := newFakeMapper("user")
	rt, err := NewRouter(m, nullConfig())
	require.NoError(t, err)

	resp := do(t, rt, "POST", "/", `[{"name":"a"},{"name":"b"}]`)
	assert.Equal(t, http.StatusCreated, resp.Code)
	resp = do(t, rt, "POST", "/", `{"name":"a"}`)
	assert.Equal(t, http.StatusCreated, resp.Code)
	resp = do(t, rt, "PUT", "/", `[{"id":"1"}]`)
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = do(t, rt, "PUT", "/", `{"name":"c"}`)
	assert.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, []string{"createMany", "create", "updateMany", "updateAll"}, m.Calls())
	assert.Equal(t, []mapper.Record{{"name": "a"}, {"name": "b"}}, m.calls[0].Props)
}

func TestClassifyBody(t *testing.T) {
	assert.Equal(t, Batch, ClassifyBody([]interface{}{}))
	assert.Equal(t, Batch, ClassifyBody([]mapper.Record{}))
	assert.Equal(t, Single, ClassifyBody(map[string]interface{}{}))
	assert.Equal(t, Single, ClassifyBody("x"))
	assert.Equal(t, Single, ClassifyBody(nil))
}

func TestOperationRegistry(t *testing.T) {
	statuses := map[Operation]int{
		FindAll:    http.StatusOK,
		Find:       http.StatusOK,
		CreateMany: http.StatusCreated,
		Create:     http.StatusCreated,
		UpdateMany: http.StatusOK,
		UpdateAll:  http.StatusOK,
		Update:     http.StatusOK,
		DestroyAll: http.StatusNoContent,
		Destroy:    http.StatusNoContent,
	}
	assert.Len(t, Operations(), len(statuses))
	for _, op := range Operations() {
		assert.True(t, op.Valid(), "%v", op)
		assert.Equal(t, statuses[op], op.DefaultStatus(), "%v", op)
		assert.NotNil(t, op.DefaultAction(), "%v", op)
	}
	assert.False(t, Operation("frobnicate").Valid())
}

// TestRouterContainer checks that every member of a container gets its
// own routes, and that requests reach only that member.
func TestRouterContainer(t *testing.T) {
	user := newFakeMapper("user")
	todo := newFakeMapper("todo")
	rt, err := NewRouter(fakeContainer{"user": user, "todo": todo}, nullConfig())
	require.NoError(t, err)

	resp := do(t, rt, "GET", "/user", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"findAll"}, user.Calls())
	assert.Empty(t, todo.Calls())

	resp = do(t, rt, "GET", "/todo/3", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"findAll"}, user.Calls())
	assert.Equal(t, []string{"find"}, todo.Calls())

	resp = do(t, rt, "GET", "/nothing", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	routes := rt.Routes()
	if assert.Len(t, routes, 14) {
		// Members are added in name order
		assert.Equal(t, Route{
			Method:     "GET",
			Path:       "/todo",
			Operations: []Operation{FindAll},
			Resource:   "todo",
		}, routes[0])
		assert.Equal(t, Route{
			Method:     "POST",
			Path:       "/user",
			Operations: []Operation{CreateMany, Create},
			Resource:   "user",
		}, routes[8])
		assert.Equal(t, "/user/{id}", routes[13].Path)
	}
}

func TestRouterEndpoints(t *testing.T) {
	user := newFakeMapper("user")
	user.endpoint = "users"
	todo := newFakeMapper("todo")
	rt, err := NewRouter(fakeContainer{"user": user, "todo": todo}, nullConfig())
	require.NoError(t, err)

	do(t, rt, "GET", "/users", "")
	do(t, rt, "GET", "/todo", "")
	resp := do(t, rt, "GET", "/user", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, []string{"findAll"}, user.Calls())
	assert.Equal(t, []string{"findAll"}, todo.Calls())

	cfg := nullConfig()
	cfg.GetEndpoint = func(m mapper.Mapper) string {
		return "/v2/" + m.Name()
	}
	rt, err = NewRouter(fakeContainer{"user": user}, cfg)
	require.NoError(t, err)
	resp = do(t, rt, "GET", "/v2/user/9", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "9", user.Last().ID)
}

// TestGlobalHookOnce checks that the router-wide request hook runs
// exactly once per request, and can abort it.
func TestGlobalHookOnce(t *testing.T) {
	user := newFakeMapper("user")
	todo := newFakeMapper("todo")
	count := 0
	cfg := nullConfig()
	cfg.Request = func(w http.ResponseWriter, req *Request, next func(error)) {
		count++
		if req.HTTP.Header.Get("X-Deny") != "" {
			next(errors.New("denied"))
			return
		}
		next(nil)
	}
	rt, err := NewRouter(fakeContainer{"user": user, "todo": todo}, cfg)
	require.NoError(t, err)

	do(t, rt, "GET", "/user", "")
	assert.Equal(t, 1, count)
	do(t, rt, "POST", "/todo", `[{"a":"b"}]`)
	assert.Equal(t, 2, count)

	req, err := http.NewRequest("GET", "/user", nil)
	require.NoError(t, err)
	req.Header.Set("X-Deny", "yes")
	resp := newRecorder()
	rt.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, 3, count)
	assert.Equal(t, []string{"findAll"}, user.Calls())
}

func TestRouterUnparsedQuery(t *testing.T) {
	user := newFakeMapper("user")
	rt, err := NewRouter(user, nullConfig())
	require.NoError(t, err)
	target := "/?" + url.Values{"role": {"admin"}}.Encode()
	do(t, rt, "GET", target, "")
	assert.Equal(t, mapper.Query{"role": "admin"}, user.Last().Query)
}

// TestDoubleFault checks that, if there is an error writing a JSON
// response, it doesn't actually panic the process.
func TestDoubleFault(t *testing.T) {
	m := newFakeMapper("user")
	rt, err := NewRouter(m, nullConfig())
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "/17", nil)
	require.NoError(t, err)
	resp := &failResponseWriter{}
	rt.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
