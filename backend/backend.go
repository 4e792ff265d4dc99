// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct a mapper
// container based on command-line flags.
package backend

import (
	"errors"
	"strings"

	"github.com/diffeo/go-restmount/bolt"
	"github.com/diffeo/go-restmount/cache"
	"github.com/diffeo/go-restmount/mapper"
	"github.com/diffeo/go-restmount/memory"
	"github.com/diffeo/go-restmount/postgres"
	"github.com/diffeo/go-restmount/restclient"
)

// Backend describes user-visible parameters to store resource data.
// This implements the flag.Value interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{Implementation: "memory"}
//         flag.Var(&backend, "backend", "impl:address of resource storage")
//         flag.Parse()
//         container, err := backend.Container()
//     }
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory".
	Implementation string

	// Address holds some backend-specific address, such as a
	// database connect string.
	Address string

	// Cache, if positive, wraps the container in an LRU cache of
	// that many records per resource.
	Cache int
}

// Container creates a new mapper container.  This generally should be
// only called once.  If the backend has in-process state, such as a
// database connection pool or an in-memory store, calling this
// multiple times will create multiple copies of that state.  In
// particular, if b.Implementation is "memory", multiple calls to this
// will create multiple independent worlds.
func (b *Backend) Container() (mapper.Definer, error) {
	var (
		c   mapper.Definer
		err error
	)
	switch b.Implementation {
	case "memory":
		c = memory.New()
	case "postgres":
		c, err = postgres.New(b.Address)
	case "bolt":
		c, err = bolt.Open(b.Address)
	case "http", "https":
		// The address is the rest of the URL
		c, err = restclient.New(b.String())
	default:
		err = errors.New("unknown backend " + b.Implementation)
	}
	if err != nil {
		return nil, err
	}
	if b.Cache > 0 {
		c = cache.NewWithSize(c, b.Cache)
	}
	return c, nil
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  Note that this does not
// validate the b.Address part of the string or attempt to actually
// make a connection.
func (b *Backend) Set(param string) error {
	if param == "" {
		return errors.New("must specify a backend type")
	}
	parts := strings.SplitN(param, ":", 2)
	impl, address := parts[0], ""
	if len(parts) == 2 {
		address = parts[1]
	}
	switch impl {
	case "memory":
	case "postgres":
	case "bolt", "http", "https":
		if address == "" {
			return errors.New(impl + " backend needs an address")
		}
	default:
		return errors.New("unknown backend " + impl)
	}
	b.Implementation = impl
	b.Address = address
	return nil
}
