// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package mapper defines an abstract data-access API over named
// resource collections.
//
// A Mapper exposes the nine canonical CRUD operations over a single
// resource.  A Container is a named group of Mappers.  Specific
// backends (memory, postgres, bolt, the REST client) provide
// implementations of both; the restserver package publishes either
// one as a REST service.
//
// Records are plain string-keyed maps.  This package does not enforce
// any schema on them beyond the identifier attribute named in a
// Definition.
package mapper

import "context"

// Record is a single entity in a resource collection.
type Record map[string]interface{}

// Query is a structured filter passed to the collection operations.
// The reserved keys "where", "orderBy", "limit", "offset" and "skip"
// are interpreted by Select; any other key is a shorthand equality
// filter.
type Query map[string]interface{}

// Options carries side-channel directives, such as the "with"
// eager-load list, that are not part of the filter.
type Options map[string]interface{}

// Mapper is the data-access interface for one resource.
type Mapper interface {
	// Name returns the registered name of this resource.
	Name() string

	// Endpoint returns an explicit URL path segment for this
	// resource, or an empty string to use Name().
	Endpoint() string

	// FindAll returns all records matching query.  This returns
	// an empty (not nil) slice if nothing matches.
	FindAll(ctx context.Context, query Query, opts Options) ([]Record, error)

	// Find returns a single record by its identifier.  If there
	// is no such record, returns ErrNoSuchRecord.
	Find(ctx context.Context, id string, opts Options) (Record, error)

	// Create stores a new record.  If the record has no
	// identifier, the backend assigns one.  Returns the stored
	// record.
	Create(ctx context.Context, props Record, opts Options) (Record, error)

	// CreateMany stores several new records at once.
	CreateMany(ctx context.Context, records []Record, opts Options) ([]Record, error)

	// Update merges props into the record with identifier id.
	// If there is no such record, returns ErrNoSuchRecord.
	Update(ctx context.Context, id string, props Record, opts Options) (Record, error)

	// UpdateAll merges props into every record matching query
	// and returns the updated records.
	UpdateAll(ctx context.Context, props Record, query Query, opts Options) ([]Record, error)

	// UpdateMany updates several records, each of which must
	// carry its own identifier.
	UpdateMany(ctx context.Context, records []Record, opts Options) ([]Record, error)

	// Destroy deletes the record with identifier id.  Deleting a
	// record that does not exist is not an error.
	Destroy(ctx context.Context, id string, opts Options) error

	// DestroyAll deletes every record matching query.
	DestroyAll(ctx context.Context, query Query, opts Options) error

	// ToJSON converts the result of one of the operations above
	// to a value suitable for serialization.
	ToJSON(result interface{}, opts Options) (interface{}, error)
}

// Container is a named group of resources.
type Container interface {
	// Mappers returns all of the resources in this container,
	// keyed by their registered names.
	Mappers() map[string]Mapper
}

// Definer is a Container that can add resources to itself.
type Definer interface {
	Container

	// DefineMapper adds a resource.  If a resource with the same
	// name already exists, returns ErrDuplicateMapper.
	DefineMapper(def Definition) (Mapper, error)
}
