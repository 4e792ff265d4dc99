// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides identifier-based caching of records.  The
// cache wraps some other mapper.Container.  Most methods simply pass
// through to the underlying resources, but Find returns a cached
// record if there is one available.
//
// Writes made through the cache keep it current: Update stores its
// result, Destroy evicts its record, and the bulk writes empty the
// resource's cache entirely.  Writes made to the backend
// by anything else are not seen until the record is evicted, so this
// is best used when this process owns the backend.
//
// Everything except Find always goes to the backend.
package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/diffeo/go-restmount/mapper"
)

// errNotDefiner is returned from DefineMapper if the backend cannot
// define resources.
var errNotDefiner = errors.New("backend cannot define resources")

// DefaultSize is the number of records cached per resource.
const DefaultSize = 1024

// Container is a caching mapper.Container.
type Container struct {
	backend mapper.Container
	size    int

	lock      sync.Mutex
	resources map[string]*resource
}

// New creates a new caching container, wrapping some other backend.
func New(backend mapper.Container) *Container {
	return NewWithSize(backend, DefaultSize)
}

// NewWithSize creates a caching container that keeps at most size
// records per resource.
func NewWithSize(backend mapper.Container, size int) *Container {
	return &Container{
		backend:   backend,
		size:      size,
		resources: make(map[string]*resource),
	}
}

// wrap returns the cached form of m, creating it if needed.
func (c *Container) wrap(name string, m mapper.Mapper) *resource {
	c.lock.Lock()
	defer c.lock.Unlock()

	if r, present := c.resources[name]; present && r.backend == m {
		return r
	}
	r := &resource{backend: m, records: newLRU(c.size)}
	c.resources[name] = r
	return r
}

// Mappers returns the backend's resources, each wrapped in a cache.
func (c *Container) Mappers() map[string]mapper.Mapper {
	backend := c.backend.Mappers()
	result := make(map[string]mapper.Mapper, len(backend))
	for name, m := range backend {
		result[name] = c.wrap(name, m)
	}
	return result
}

// DefineMapper defines a resource in the backend, if the backend
// supports it.
func (c *Container) DefineMapper(def mapper.Definition) (mapper.Mapper, error) {
	definer, ok := c.backend.(mapper.Definer)
	if !ok {
		return nil, errNotDefiner
	}
	m, err := definer.DefineMapper(def)
	if err != nil {
		return nil, err
	}
	return c.wrap(def.Name, m), nil
}

// resource is one cached mapper.
type resource struct {
	backend mapper.Mapper
	records *lru
}

func (r *resource) Name() string {
	return r.backend.Name()
}

func (r *resource) Endpoint() string {
	return r.backend.Endpoint()
}

func (r *resource) FindAll(ctx context.Context, query mapper.Query, opts mapper.Options) ([]mapper.Record, error) {
	return r.backend.FindAll(ctx, query, opts)
}

// Find returns the cached record for id, fetching it on a miss.
// Requests with options always go to the backend, since the options
// may change what comes back.
func (r *resource) Find(ctx context.Context, id string, opts mapper.Options) (mapper.Record, error) {
	if len(opts) > 0 {
		return r.backend.Find(ctx, id, opts)
	}
	return r.records.Get(id, func(id string) (mapper.Record, error) {
		return r.backend.Find(ctx, id, opts)
	})
}

func (r *resource) Create(ctx context.Context, props mapper.Record, opts mapper.Options) (mapper.Record, error) {
	record, err := r.backend.Create(ctx, props, opts)
	// A create may replace a record with the same identifier
	r.records.Clear()
	return record, err
}

func (r *resource) CreateMany(ctx context.Context, records []mapper.Record, opts mapper.Options) ([]mapper.Record, error) {
	result, err := r.backend.CreateMany(ctx, records, opts)
	r.records.Clear()
	return result, err
}

func (r *resource) Update(ctx context.Context, id string, props mapper.Record, opts mapper.Options) (mapper.Record, error) {
	record, err := r.backend.Update(ctx, id, props, opts)
	if err != nil {
		r.records.Remove(id)
		return nil, err
	}
	r.records.Put(id, record)
	return record, nil
}

func (r *resource) UpdateAll(ctx context.Context, props mapper.Record, query mapper.Query, opts mapper.Options) ([]mapper.Record, error) {
	result, err := r.backend.UpdateAll(ctx, props, query, opts)
	r.records.Clear()
	return result, err
}

func (r *resource) UpdateMany(ctx context.Context, records []mapper.Record, opts mapper.Options) ([]mapper.Record, error) {
	result, err := r.backend.UpdateMany(ctx, records, opts)
	r.records.Clear()
	return result, err
}

func (r *resource) Destroy(ctx context.Context, id string, opts mapper.Options) error {
	err := r.backend.Destroy(ctx, id, opts)
	r.records.Remove(id)
	return err
}

func (r *resource) DestroyAll(ctx context.Context, query mapper.Query, opts mapper.Options) error {
	err := r.backend.DestroyAll(ctx, query, opts)
	r.records.Clear()
	return err
}

func (r *resource) ToJSON(result interface{}, opts mapper.Options) (interface{}, error) {
	return r.backend.ToJSON(result, opts)
}
