// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process, in-memory implementation of
// the mapper interfaces.  There is no persistence, nor is there any
// automatic sharing.  The entire container is behind a single global
// semaphore to protect against concurrent updates; in some cases
// this can limit performance in the name of correctness.
//
// This is mostly intended as a simple reference implementation that
// can be used for testing, including in-process testing of
// higher-level components.  It is generally tuned for correctness,
// not performance or scalability.
package memory

import (
	"context"
	"sync"

	"github.com/diffeo/go-restmount/mapper"
)

// New creates a new container that operates purely in memory.
func New() *Container {
	return &Container{
		resources: make(map[string]*mapper.Collection),
	}
}

// Container is an in-memory mapper.Container.
type Container struct {
	resources map[string]*mapper.Collection
	sem       sync.Mutex
}

// DefineMapper adds an empty resource.
func (c *Container) DefineMapper(def mapper.Definition) (mapper.Mapper, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	if _, present := c.resources[def.Name]; present {
		return nil, mapper.ErrDuplicateMapper{Name: def.Name}
	}
	resource := mapper.NewCollection(def, &store{c: c, records: make(map[string]mapper.Record)})
	c.resources[def.Name] = resource
	return resource, nil
}

// Mappers returns all of the defined resources.
func (c *Container) Mappers() map[string]mapper.Mapper {
	c.sem.Lock()
	defer c.sem.Unlock()

	result := make(map[string]mapper.Mapper, len(c.resources))
	for name, resource := range c.resources {
		result[name] = resource
	}
	return result
}

// store holds one resource's records, in insertion order.
type store struct {
	c       *Container
	order   []string
	records map[string]mapper.Record
}

func (s *store) Get(ctx context.Context, id string) (mapper.Record, bool, error) {
	s.c.sem.Lock()
	defer s.c.sem.Unlock()

	record, present := s.records[id]
	return record.Clone(), present, nil
}

func (s *store) Put(ctx context.Context, id string, record mapper.Record) error {
	s.c.sem.Lock()
	defer s.c.sem.Unlock()

	if _, present := s.records[id]; !present {
		s.order = append(s.order, id)
	}
	s.records[id] = record.Clone()
	return nil
}

func (s *store) Delete(ctx context.Context, id string) error {
	s.c.sem.Lock()
	defer s.c.sem.Unlock()

	if _, present := s.records[id]; !present {
		return nil
	}
	delete(s.records, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *store) All(ctx context.Context) ([]mapper.Record, error) {
	s.c.sem.Lock()
	defer s.c.sem.Unlock()

	result := make([]mapper.Record, len(s.order))
	for i, id := range s.order {
		result[i] = s.records[id].Clone()
	}
	return result, nil
}
