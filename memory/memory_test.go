// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"
	"testing"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/diffeo/go-restmount/mapper/mappertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Suite is the memory backend's generic test suite.
type Suite struct {
	mappertest.Suite
}

// SetupSuite creates the container under test.
func (s *Suite) SetupSuite() {
	s.Container = New()
	s.Suite.SetupSuite()
}

// TestMapper runs the generic mapper tests.
func TestMapper(t *testing.T) {
	suite.Run(t, &Suite{})
}

// TestInsertionOrder checks that unordered queries return records in
// the order they were created.
func TestInsertionOrder(t *testing.T) {
	ctx := context.Background()
	c := New()
	m, err := c.DefineMapper(mapper.Definition{Name: "user"})
	require.NoError(t, err)
	for _, name := range []string{"c", "a", "b"} {
		_, err = m.Create(ctx, mapper.Record{"id": name}, nil)
		require.NoError(t, err)
	}
	require.NoError(t, m.Destroy(ctx, "a", nil))
	_, err = m.Create(ctx, mapper.Record{"id": "a"}, nil)
	require.NoError(t, err)

	records, err := m.FindAll(ctx, mapper.Query{}, nil)
	require.NoError(t, err)
	var ids []interface{}
	for _, record := range records {
		ids = append(ids, record["id"])
	}
	assert.Equal(t, []interface{}{"c", "b", "a"}, ids)
}

// TestNoAliasing checks that callers cannot modify stored records.
func TestNoAliasing(t *testing.T) {
	ctx := context.Background()
	c := New()
	m, err := c.DefineMapper(mapper.Definition{Name: "user"})
	require.NoError(t, err)
	props := mapper.Record{"id": "1", "tags": []interface{}{"a"}}
	record, err := m.Create(ctx, props, nil)
	require.NoError(t, err)
	props["tags"].([]interface{})[0] = "changed"
	record["extra"] = true

	found, err := m.Find(ctx, "1", nil)
	require.NoError(t, err)
	assert.Equal(t, mapper.Record{"id": "1", "tags": []interface{}{"a"}}, found)
}
