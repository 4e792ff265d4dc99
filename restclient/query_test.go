// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"net/url"
	"testing"

	"github.com/diffeo/go-restmount/directive"
	"github.com/diffeo/go-restmount/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeQuery(t *testing.T) {
	values, err := encodeQuery(mapper.Query{
		"where":   map[string]interface{}{"role": "admin"},
		"orderBy": []interface{}{[]interface{}{"name", "DESC"}},
		"active":  true,
		"country": "nz",
		"limit":   2,
	}, mapper.Options{"with": []interface{}{"posts", "comments"}})
	require.NoError(t, err)
	assert.Equal(t, "nz", values.Get("country"))
	assert.Equal(t, "2", values.Get("limit"))
	assert.Equal(t, []string{"posts", "comments"}, values["with"])
	assert.Empty(t, values.Get("active"))

	// The server's parser recovers the structured query
	query := directive.FromValues(values)
	query, _ = directive.Extract(query)
	query, err = directive.Parse(query)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"role": "admin", "active": true}, query["where"])
	assert.Equal(t, []interface{}{[]interface{}{"name", "DESC"}}, query["orderBy"])
}

func TestEncodeQueryStringWhere(t *testing.T) {
	values, err := encodeQuery(mapper.Query{"where": "not-json", "active": true}, nil)
	require.NoError(t, err)
	assert.Equal(t, url.Values{"where": {"not-json"}, "active": {"true"}}, values)
}

func TestTemplate(t *testing.T) {
	c, err := New("http://localhost/api")
	require.NoError(t, err)
	m, err := c.DefineMapper(mapper.Definition{Name: "todo", Endpoint: "/todos"})
	require.NoError(t, err)
	rm := m.(*Mapper)
	u, err := rm.Template(memberTemplate, rm.vars("a b"))
	if assert.NoError(t, err) {
		assert.Equal(t, "http://localhost/api/todos/a%20b", u.String())
	}
	u, err = rm.Template(collectionTemplate, rm.vars(""))
	if assert.NoError(t, err) {
		assert.Equal(t, "http://localhost/api/todos", u.String())
	}
}

// parseValues runs values through the same steps as the server's
// query parser.
func parseValues(t *testing.T, values url.Values) mapper.Query {
	query, _ := directive.Extract(directive.FromValues(values))
	query, err := directive.Parse(query)
	require.NoError(t, err)
	return query
}

func TestEncodeOrderBy(t *testing.T) {
	tests := []struct {
		name    string
		orderBy interface{}
		want    []string
	}{
		{"one pair", []interface{}{[]interface{}{"name", "DESC"}}, []string{`["name","DESC"]`}},
		{"two clauses", []interface{}{"role", []interface{}{"name", "DESC"}}, []string{"role", `["name","DESC"]`}},
		{"object clause", []interface{}{map[string]interface{}{"name": "ASC"}}, []string{`{"name":"ASC"}`}},
		{"string list", []string{"role", "name"}, []string{"role", "name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := encodeQuery(mapper.Query{"orderBy": tt.orderBy}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, values["orderBy"])

			query := parseValues(t, values)
			clauses, ok := query["orderBy"].([]interface{})
			if assert.True(t, ok) {
				assert.Len(t, clauses, len(tt.want))
			}
		})
	}

	values, err := encodeQuery(mapper.Query{
		"sort": []interface{}{[]interface{}{"name", "DESC"}, "role"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, mapper.Query{
		"orderBy": []interface{}{[]interface{}{"name", "DESC"}, "role"},
	}, parseValues(t, values))
}
