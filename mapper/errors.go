// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package mapper

import (
	"errors"
	"fmt"
)

// ErrNotRecord is returned when an operation that needs a record is
// handed some other kind of value, such as a JSON string or number.
var ErrNotRecord = errors.New("Value is not a record")

// ErrMissingID is returned from UpdateMany if one of the records does
// not carry an identifier.
var ErrMissingID = errors.New("Record has no identifier")

// ErrChangedID is returned from Update if the update would change the
// record's identifier.
var ErrChangedID = errors.New("Cannot change record identifier")

// ErrNoSuchRecord is returned by Find and Update when no record
// exists with the requested identifier.
type ErrNoSuchRecord struct {
	Resource string
	ID       string
}

func (err ErrNoSuchRecord) Error() string {
	return fmt.Sprintf("No such %v %v", err.Resource, err.ID)
}

// ErrNoSuchMapper is returned by container lookups when no resource is
// registered under a name.
type ErrNoSuchMapper struct {
	Name string
}

func (err ErrNoSuchMapper) Error() string {
	return fmt.Sprintf("No such resource %v", err.Name)
}

// ErrDuplicateMapper is returned when defining a resource whose name is
// already registered in a container.
type ErrDuplicateMapper struct {
	Name string
}

func (err ErrDuplicateMapper) Error() string {
	return fmt.Sprintf("Resource %v already defined", err.Name)
}
