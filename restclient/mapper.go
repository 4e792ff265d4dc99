// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/ugorji/go/codec"
)

const (
	collectionTemplate = "{+endpoint}"
	memberTemplate     = "{+endpoint}/{id}"
)

// Mapper is a mapper.Mapper for one remote resource.
type Mapper struct {
	resource
	Def mapper.Definition
}

// Name returns the resource's registered name.
func (m *Mapper) Name() string {
	return m.Def.Name
}

// Endpoint returns the resource's explicit endpoint, if any.
func (m *Mapper) Endpoint() string {
	return m.Def.Endpoint
}

func (m *Mapper) vars(id string) map[string]interface{} {
	endpoint := m.Def.Endpoint
	if endpoint == "" {
		endpoint = m.Def.Name
	}
	vars := map[string]interface{}{
		"endpoint": strings.Trim(endpoint, "/"),
	}
	if id != "" {
		vars["id"] = id
	}
	return vars
}

func (m *Mapper) collection(ctx context.Context, method string, query mapper.Query, opts mapper.Options, in, out interface{}) error {
	values, err := encodeQuery(query, opts)
	if err != nil {
		return err
	}
	return m.DoAt(ctx, method, collectionTemplate, m.vars(""), values, in, out)
}

func (m *Mapper) member(ctx context.Context, method, id string, opts mapper.Options, in, out interface{}) error {
	values, err := encodeQuery(nil, opts)
	if err != nil {
		return err
	}
	return m.DoAt(ctx, method, memberTemplate, m.vars(id), values, in, out)
}

func records(body interface{}, err error) ([]mapper.Record, error) {
	if err != nil {
		return nil, err
	}
	return mapper.AsRecords(body)
}

func record(body interface{}, err error) (mapper.Record, error) {
	if err != nil {
		return nil, err
	}
	return mapper.AsRecord(body)
}

// FindAll sends GET to the collection.
func (m *Mapper) FindAll(ctx context.Context, query mapper.Query, opts mapper.Options) ([]mapper.Record, error) {
	var body interface{}
	err := m.collection(ctx, "GET", query, opts, nil, &body)
	return records(body, err)
}

// Find sends GET to one member.
func (m *Mapper) Find(ctx context.Context, id string, opts mapper.Options) (mapper.Record, error) {
	var body interface{}
	err := m.member(ctx, "GET", id, opts, nil, &body)
	return record(body, err)
}

// Create sends POST with an object body.
func (m *Mapper) Create(ctx context.Context, props mapper.Record, opts mapper.Options) (mapper.Record, error) {
	if props == nil {
		props = mapper.Record{}
	}
	var body interface{}
	err := m.collection(ctx, "POST", nil, opts, map[string]interface{}(props), &body)
	return record(body, err)
}

// CreateMany sends POST with an array body.
func (m *Mapper) CreateMany(ctx context.Context, recs []mapper.Record, opts mapper.Options) ([]mapper.Record, error) {
	var body interface{}
	err := m.collection(ctx, "POST", nil, opts, asList(recs), &body)
	return records(body, err)
}

// Update sends PUT to one member.
func (m *Mapper) Update(ctx context.Context, id string, props mapper.Record, opts mapper.Options) (mapper.Record, error) {
	if props == nil {
		props = mapper.Record{}
	}
	var body interface{}
	err := m.member(ctx, "PUT", id, opts, map[string]interface{}(props), &body)
	return record(body, err)
}

// UpdateAll sends PUT to the collection with an object body.
func (m *Mapper) UpdateAll(ctx context.Context, props mapper.Record, query mapper.Query, opts mapper.Options) ([]mapper.Record, error) {
	if props == nil {
		props = mapper.Record{}
	}
	var body interface{}
	err := m.collection(ctx, "PUT", query, opts, map[string]interface{}(props), &body)
	return records(body, err)
}

// UpdateMany sends PUT to the collection with an array body.
func (m *Mapper) UpdateMany(ctx context.Context, recs []mapper.Record, opts mapper.Options) ([]mapper.Record, error) {
	var body interface{}
	err := m.collection(ctx, "PUT", nil, opts, asList(recs), &body)
	return records(body, err)
}

// Destroy sends DELETE to one member.
func (m *Mapper) Destroy(ctx context.Context, id string, opts mapper.Options) error {
	return m.member(ctx, "DELETE", id, opts, nil, nil)
}

// DestroyAll sends DELETE to the collection.
func (m *Mapper) DestroyAll(ctx context.Context, query mapper.Query, opts mapper.Options) error {
	return m.collection(ctx, "DELETE", query, opts, nil, nil)
}

// ToJSON returns copies of records.
func (m *Mapper) ToJSON(result interface{}, opts mapper.Options) (interface{}, error) {
	return mapper.ToJSON(result, opts)
}

func asList(recs []mapper.Record) []interface{} {
	list := make([]interface{}, len(recs))
	for i, r := range recs {
		list[i] = map[string]interface{}(r)
	}
	return list
}

// directiveKeys are the query keys the server decodes as JSON.
var directiveKeys = map[string]bool{
	"where":   true,
	"orderBy": true,
	"sort":    true,
}

// encodeQuery turns a query into URL parameters the server's query
// parser will turn back into the same query.  Shorthand filters whose
// values are not strings move into the "where" object so they keep
// their type.  Of the options only "with" is sent.
func encodeQuery(query mapper.Query, opts mapper.Options) (url.Values, error) {
	values := url.Values{}
	var where map[string]interface{}
	switch w := query["where"].(type) {
	case nil:
	case map[string]interface{}:
		where = make(map[string]interface{}, len(w))
		for k, v := range w {
			where[k] = v
		}
	default:
		text, err := encodeValue(w)
		if err != nil {
			return nil, err
		}
		values.Set("where", text)
	}
	for key, value := range query {
		if key == "where" {
			continue
		}
		if s, isString := value.(string); isString {
			values.Set(key, s)
			continue
		}
		if key == "orderBy" || key == "sort" {
			if err := addClauses(values, key, value); err != nil {
				return nil, err
			}
			continue
		}
		if !directiveKeys[key] && !isPaging(key) && values.Get("where") == "" {
			if where == nil {
				where = make(map[string]interface{})
			}
			where[key] = value
			continue
		}
		text, err := encodeValue(value)
		if err != nil {
			return nil, err
		}
		values.Set(key, text)
	}
	if where != nil {
		text, err := encodeValue(where)
		if err != nil {
			return nil, err
		}
		values.Set("where", text)
	}
	switch with := opts["with"].(type) {
	case nil:
	case string:
		values.Set("with", with)
	case []string:
		values["with"] = with
	case []interface{}:
		for _, item := range with {
			values.Add("with", fmt.Sprint(item))
		}
	}
	return values, nil
}

// addClauses sends one parameter per orderBy clause, since the
// server treats a single parameter as a single clause.
func addClauses(values url.Values, key string, value interface{}) error {
	var clauses []interface{}
	switch v := value.(type) {
	case []interface{}:
		clauses = v
	case []string:
		for _, clause := range v {
			clauses = append(clauses, clause)
		}
	default:
		clauses = []interface{}{value}
	}
	for _, clause := range clauses {
		text, err := encodeValue(clause)
		if err != nil {
			return err
		}
		values.Add(key, text)
	}
	return nil
}

func isPaging(key string) bool {
	return key == "limit" || key == "offset" || key == "skip"
}

// encodeValue renders strings as themselves, numbers with fmt, and
// anything else as JSON.
func encodeValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(v), nil
	}
	var out []byte
	json := &codec.JsonHandle{}
	err := codec.NewEncoderBytes(&out, json).Encode(value)
	return string(out), err
}
