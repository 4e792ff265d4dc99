// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"context"
	"net/http"

	"github.com/diffeo/go-restmount/mapper"
)

// Operation names one of the nine canonical data-access operations.
type Operation string

// The canonical operations.
const (
	FindAll    Operation = "findAll"
	Find       Operation = "find"
	CreateMany Operation = "createMany"
	Create     Operation = "create"
	UpdateMany Operation = "updateMany"
	UpdateAll  Operation = "updateAll"
	Update     Operation = "update"
	DestroyAll Operation = "destroyAll"
	Destroy    Operation = "destroy"
)

// registryEntry is the registry entry for one operation.
type registryEntry struct {
	action Action
	status int
}

var operations = map[Operation]registryEntry{
	FindAll: {
		action: func(ctx context.Context, m mapper.Mapper, req *Request) (interface{}, error) {
			return m.FindAll(ctx, req.Query, req.Options)
		},
		status: http.StatusOK,
	},
	Find: {
		action: func(ctx context.Context, m mapper.Mapper, req *Request) (interface{}, error) {
			return m.Find(ctx, req.ID(), req.Options)
		},
		status: http.StatusOK,
	},
	CreateMany: {
		action: func(ctx context.Context, m mapper.Mapper, req *Request) (interface{}, error) {
			records, err := req.Records()
			if err != nil {
				return nil, err
			}
			return m.CreateMany(ctx, records, req.Options)
		},
		status: http.StatusCreated,
	},
	Create: {
		action: func(ctx context.Context, m mapper.Mapper, req *Request) (interface{}, error) {
			record, err := req.Record()
			if err != nil {
				return nil, err
			}
			return m.Create(ctx, record, req.Options)
		},
		status: http.StatusCreated,
	},
	UpdateMany: {
		action: func(ctx context.Context, m mapper.Mapper, req *Request) (interface{}, error) {
			records, err := req.Records()
			if err != nil {
				return nil, err
			}
			return m.UpdateMany(ctx, records, req.Options)
		},
		status: http.StatusOK,
	},
	UpdateAll: {
		action: func(ctx context.Context, m mapper.Mapper, req *Request) (interface{}, error) {
			record, err := req.Record()
			if err != nil {
				return nil, err
			}
			return m.UpdateAll(ctx, record, req.Query, req.Options)
		},
		status: http.StatusOK,
	},
	Update: {
		action: func(ctx context.Context, m mapper.Mapper, req *Request) (interface{}, error) {
			record, err := req.Record()
			if err != nil {
				return nil, err
			}
			return m.Update(ctx, req.ID(), record, req.Options)
		},
		status: http.StatusOK,
	},
	DestroyAll: {
		action: func(ctx context.Context, m mapper.Mapper, req *Request) (interface{}, error) {
			return nil, m.DestroyAll(ctx, req.Query, req.Options)
		},
		status: http.StatusNoContent,
	},
	Destroy: {
		action: func(ctx context.Context, m mapper.Mapper, req *Request) (interface{}, error) {
			return nil, m.Destroy(ctx, req.ID(), req.Options)
		},
		status: http.StatusNoContent,
	},
}

// Operations returns all of the canonical operations, in a fixed
// order.
func Operations() []Operation {
	return []Operation{
		FindAll, Find, CreateMany, Create,
		UpdateMany, UpdateAll, Update,
		DestroyAll, Destroy,
	}
}

// Valid determines whether op is one of the canonical operations.
func (op Operation) Valid() bool {
	_, present := operations[op]
	return present
}

// DefaultStatus returns the HTTP status code sent on success when the
// operation is not configured otherwise.
func (op Operation) DefaultStatus() int {
	return operations[op].status
}

// DefaultAction returns the action that invokes the operation's
// Mapper method.
func (op Operation) DefaultAction() Action {
	return operations[op].action
}

// BodyShape classifies a decoded request body.
type BodyShape int

const (
	// Single is a body holding one record (or anything that is
	// not a list).
	Single BodyShape = iota

	// Batch is a body holding a list of records.
	Batch
)

func (s BodyShape) String() string {
	if s == Batch {
		return "batch"
	}
	return "single"
}

// ClassifyBody decides whether a decoded body is a batch.  Only the
// runtime shape of the body matters.
func ClassifyBody(body interface{}) BodyShape {
	switch body.(type) {
	case []interface{}, []mapper.Record, []map[string]interface{}:
		return Batch
	default:
		return Single
	}
}
