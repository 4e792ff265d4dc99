// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides a mapper.Container that talks to a REST
// server built by the "restserver" package.
//
// The server in github.com/diffeo/go-restmount/cmd/restmountd can run
// a compatible REST server.  Call New() with the base URL where the
// server's resources are mounted, then define the resources you want
// to reach; for instance,
//
//     c, err := restclient.New("http://localhost:5980/api/")
//     users, err := c.DefineMapper(mapper.Definition{Name: "user"})
//
// Definitions are local to the client: they only tell it where each
// resource lives on the server.
package restclient

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/diffeo/go-restmount/mapper"
)

// ErrNoServer is returned from New if the base URL does not name a
// server.
var ErrNoServer = errors.New("restclient: base URL needs a scheme and host")

// Container is a mapper.Container whose resources are on a remote
// server.
type Container struct {
	resource

	lock      sync.Mutex
	resources map[string]*Mapper
}

// New creates a new Container that speaks to an external REST server.
func New(baseURL string) (*Container, error) {
	return NewWithClient(baseURL, nil)
}

// NewWithClient creates a new Container that uses a specific HTTP
// client.  If client is nil, uses http.DefaultClient.
func NewWithClient(baseURL string, client *http.Client) (*Container, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, ErrNoServer
	}
	// Resource paths resolve relative to the base
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Container{
		resource:  resource{URL: u, Client: client},
		resources: make(map[string]*Mapper),
	}, nil
}

// DefineMapper adds a client for a resource the server exposes.
func (c *Container) DefineMapper(def mapper.Definition) (mapper.Mapper, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, present := c.resources[def.Name]; present {
		return nil, mapper.ErrDuplicateMapper{Name: def.Name}
	}
	m := &Mapper{resource: c.resource, Def: def}
	c.resources[def.Name] = m
	return m, nil
}

// Mappers returns all of the defined resources.
func (c *Container) Mappers() map[string]mapper.Mapper {
	c.lock.Lock()
	defer c.lock.Unlock()
	result := make(map[string]mapper.Mapper, len(c.resources))
	for name, m := range c.resources {
		result[name] = m
	}
	return result
}
