// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package mappertest

import (
	"github.com/diffeo/go-restmount/mapper"
)

// TestContainerMappers checks that defined resources are listed by
// name with their endpoints.
func (s *Suite) TestContainerMappers() {
	mappers := s.Container.Mappers()
	if s.Contains(mappers, "user") {
		s.Equal("user", mappers["user"].Name())
		s.Equal("", mappers["user"].Endpoint())
	}
	if s.Contains(mappers, "todo") {
		s.Equal("todo", mappers["todo"].Name())
		s.Equal("todos", mappers["todo"].Endpoint())
	}

	m, err := mapper.Lookup(s.Container, "user")
	if s.NoError(err) {
		s.Equal("user", m.Name())
	}
	_, err = mapper.Lookup(s.Container, "nobody")
	s.Equal(mapper.ErrNoSuchMapper{Name: "nobody"}, err)
}

// TestDefineDuplicate checks that a name can only be defined once.
func (s *Suite) TestDefineDuplicate() {
	_, err := s.Container.DefineMapper(UserDefinition)
	s.Equal(mapper.ErrDuplicateMapper{Name: "user"}, err)
}
