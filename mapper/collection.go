// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package mapper

import (
	"context"
	"sync"

	uuid "github.com/satori/go.uuid"
)

// Store is the record storage under a Collection.  Implementations
// need not be safe for concurrent writers; the Collection serializes
// its own writes.
type Store interface {
	// Get fetches one record.  The boolean is false if there is
	// no record with that identifier.
	Get(ctx context.Context, id string) (Record, bool, error)

	// Put creates or replaces one record.
	Put(ctx context.Context, id string, record Record) error

	// Delete removes one record, if it exists.
	Delete(ctx context.Context, id string) error

	// All returns every record, in a stable order.
	All(ctx context.Context) ([]Record, error)
}

// NewID generates a fresh record identifier.
func NewID() string {
	return uuid.NewV4().String()
}

// Collection implements Mapper over a Store, using Select for
// queries.  The bundled backends differ only in their Store.
type Collection struct {
	Def   Definition
	Store Store

	lock sync.Mutex
}

// NewCollection creates a Collection for def backed by store.
func NewCollection(def Definition, store Store) *Collection {
	return &Collection{Def: def, Store: store}
}

// Name returns the resource's registered name.
func (c *Collection) Name() string {
	return c.Def.Name
}

// Endpoint returns the resource's explicit endpoint, if any.
func (c *Collection) Endpoint() string {
	return c.Def.Endpoint
}

func (c *Collection) notFound(id string) error {
	return ErrNoSuchRecord{Resource: c.Def.Name, ID: id}
}

// FindAll returns copies of the records matching query.
func (c *Collection) FindAll(ctx context.Context, query Query, opts Options) ([]Record, error) {
	all, err := c.Store.All(ctx)
	if err != nil {
		return nil, err
	}
	return Select(all, query)
}

// Find returns the record with identifier id.
func (c *Collection) Find(ctx context.Context, id string, opts Options) (Record, error) {
	record, present, err := c.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, c.notFound(id)
	}
	return record, nil
}

// Create stores props, assigning an identifier if it has none.  A
// record with an existing identifier replaces the old one.
func (c *Collection) Create(ctx context.Context, props Record, opts Options) (Record, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.create(ctx, props)
}

func (c *Collection) create(ctx context.Context, props Record) (Record, error) {
	record := props.Clone()
	if record == nil {
		record = Record{}
	}
	id, hasID := c.Def.ID(record)
	if !hasID {
		id = NewID()
		record[c.Def.IDKey()] = id
	}
	if err := c.Store.Put(ctx, id, record); err != nil {
		return nil, err
	}
	return record, nil
}

// CreateMany stores each of records in turn.
func (c *Collection) CreateMany(ctx context.Context, records []Record, opts Options) ([]Record, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	result := make([]Record, 0, len(records))
	for _, props := range records {
		record, err := c.create(ctx, props)
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, nil
}

// Update merges props into the record with identifier id.
func (c *Collection) Update(ctx context.Context, id string, props Record, opts Options) (Record, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.update(ctx, id, props)
}

func (c *Collection) update(ctx context.Context, id string, props Record) (Record, error) {
	if newID, hasID := c.Def.ID(props); hasID && newID != id {
		return nil, ErrChangedID
	}
	record, present, err := c.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, c.notFound(id)
	}
	record = record.Merge(props)
	if err := c.Store.Put(ctx, id, record); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateAll merges props into every record matching query.
func (c *Collection) UpdateAll(ctx context.Context, props Record, query Query, opts Options) ([]Record, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	all, err := c.Store.All(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := Select(all, query)
	if err != nil {
		return nil, err
	}
	result := make([]Record, 0, len(matches))
	for _, match := range matches {
		id, _ := c.Def.ID(match)
		record, err := c.update(ctx, id, props)
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, nil
}

// UpdateMany updates each of records by its own identifier.
func (c *Collection) UpdateMany(ctx context.Context, records []Record, opts Options) ([]Record, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, props := range records {
		if _, hasID := c.Def.ID(props); !hasID {
			return nil, ErrMissingID
		}
	}
	result := make([]Record, 0, len(records))
	for _, props := range records {
		id, _ := c.Def.ID(props)
		record, err := c.update(ctx, id, props)
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, nil
}

// Destroy deletes the record with identifier id, if there is one.
func (c *Collection) Destroy(ctx context.Context, id string, opts Options) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.Store.Delete(ctx, id)
}

// DestroyAll deletes every record matching query.
func (c *Collection) DestroyAll(ctx context.Context, query Query, opts Options) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	all, err := c.Store.All(ctx)
	if err != nil {
		return err
	}
	matches, err := Select(all, query)
	if err != nil {
		return err
	}
	for _, match := range matches {
		id, _ := c.Def.ID(match)
		if err := c.Store.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ToJSON returns deep copies of records.
func (c *Collection) ToJSON(result interface{}, opts Options) (interface{}, error) {
	return ToJSON(result, opts)
}
