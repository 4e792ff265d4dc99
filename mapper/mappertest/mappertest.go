// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package mappertest provides generic functional tests for the mapper
// interfaces.  A typical backend test module needs to wrap Suite to
// create its backend:
//
//     package mybackend
//
//     import (
//             "testing"
//             "github.com/diffeo/go-restmount/mapper/mappertest"
//             "github.com/stretchr/testify/suite"
//     )
//
//     // Suite is the per-backend generic test suite.
//     type Suite struct{
//             mappertest.Suite
//     }
//
//     // SetupSuite does global setup for the test suite.
//     func (s *Suite) SetupSuite() {
//             s.Container = New()
//             s.Suite.SetupSuite()
//     }
//
//     // TestMapper runs the mapper generic tests.
//     func TestMapper(t *testing.T) {
//             suite.Run(t, &Suite{})
//     }
package mappertest

import (
	"context"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/stretchr/testify/suite"
)

// Suite is the generic mapper backend test suite.
type Suite struct {
	suite.Suite

	// Container contains the backend under test.  It is set by
	// importing packages before SetupSuite runs.
	Container mapper.Definer

	// Users is a resource with the default "id" identifier.
	Users mapper.Mapper

	// Todos is a resource with a "key" identifier and an
	// explicit endpoint.
	Todos mapper.Mapper

	// Ctx is passed to every mapper call.
	Ctx context.Context
}

// UserDefinition and TodoDefinition describe the resources the suite
// creates.
var (
	UserDefinition = mapper.Definition{Name: "user"}
	TodoDefinition = mapper.Definition{
		Name:        "todo",
		Endpoint:    "todos",
		IDAttribute: "key",
	}
)

// SetupSuite defines the suite's resources.
func (s *Suite) SetupSuite() {
	s.Ctx = context.Background()
	var err error
	s.Users, err = s.Container.DefineMapper(UserDefinition)
	s.Require().NoError(err)
	s.Todos, err = s.Container.DefineMapper(TodoDefinition)
	s.Require().NoError(err)
}

// SetupTest empties both resources.
func (s *Suite) SetupTest() {
	s.Require().NoError(s.Users.DestroyAll(s.Ctx, mapper.Query{}, nil))
	s.Require().NoError(s.Todos.DestroyAll(s.Ctx, mapper.Query{}, nil))
}

// createUsers creates one user per name, each with a role, and
// returns their identifiers in order.
func (s *Suite) createUsers(roles map[string]string, names ...string) []string {
	ids := make([]string, len(names))
	for i, name := range names {
		record, err := s.Users.Create(s.Ctx, mapper.Record{
			"name": name,
			"role": roles[name],
		}, nil)
		s.Require().NoError(err)
		id, hasID := UserDefinition.ID(record)
		s.Require().True(hasID)
		ids[i] = id
	}
	return ids
}

// names returns the "name" field of each record.
func names(records []mapper.Record) []string {
	result := make([]string, len(records))
	for i, record := range records {
		name, _ := record["name"].(string)
		result[i] = name
	}
	return result
}
