// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

import (
	"testing"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/stretchr/testify/assert"
)

func Make(id string) (mapper.Record, error) {
	return mapper.Record{"id": id}, nil
}

func DoNotMake(id string) (mapper.Record, error) {
	return nil, assert.AnError
}

type LRUAssertions struct {
	*assert.Assertions
	LRU *lru
}

func NewLRUAssertions(t assert.TestingT, size int) *LRUAssertions {
	return &LRUAssertions{
		assert.New(t),
		newLRU(size),
	}
}

// PutID adds a record with id to the cache.
func (a *LRUAssertions) PutID(id string) {
	a.LRU.Put(id, mapper.Record{"id": id})
}

// GetID fetches a record with id from the cache; if not present, it
// is added.
func (a *LRUAssertions) GetID(id string) {
	record, err := a.LRU.Get(id, Make)
	if a.NoError(err) {
		a.Equal(id, record["id"])
	}
}

// GetPresent fetches a record with id from the cache; if not present,
// it should produce an assertion error.
func (a *LRUAssertions) GetPresent(id string) {
	record, err := a.LRU.Get(id, DoNotMake)
	if a.NoError(err) {
		a.Equal(id, record["id"])
	}
}

// GetError tries to fetch a record from the cache, but it should not
// exist, and the resulting error will be caught.
func (a *LRUAssertions) GetError(id string) {
	_, err := a.LRU.Get(id, DoNotMake)
	a.Error(err)
}

// LRUHas asserts that a record with id is in the cache.
func (a *LRUAssertions) LRUHas(id string) {
	record := a.LRU.Peek(id)
	if a.NotNil(record) {
		a.Equal(id, record["id"])
	}
}

// LRUDoesNotHave asserts that no record with id is in the cache.
func (a *LRUAssertions) LRUDoesNotHave(id string) {
	a.Nil(a.LRU.Peek(id))
}

// TestLRUSimple tests minimal object presence.
func TestLRUSimple(t *testing.T) {
	a := NewLRUAssertions(t, 2)
	a.PutID("Sam")

	a.LRUHas("Sam")
	a.LRUDoesNotHave("Horton")
}

// TestLRUAutoInsert tests lru.Get() adding absent items.
func TestLRUAutoInsert(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetID("Marvin")
	a.GetID("Horton")
	a.LRUHas("Marvin")
	a.LRUHas("Horton")

	// Now add one more; since it is a third one, the oldest
	// (Marvin) should be evicted
	a.GetID("Sam")
	a.LRUDoesNotHave("Marvin")
	a.LRUHas("Horton")
	a.LRUHas("Sam")
}

func TestLRUInsertError(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetID("Marvin")
	a.GetID("Horton")

	// Now try to add "Sam", but the fetch function will return an
	// error; nothing is added, so nothing is evicted
	a.GetError("Sam")
	a.LRUHas("Marvin")
	a.LRUHas("Horton")
	a.LRUDoesNotHave("Sam")

	// The erroring fetch is not called for present items
	a.GetPresent("Marvin")
	a.GetPresent("Horton")
}

// TestLRUOrder tests that getting an item causes it to not get evicted.
func TestLRUOrder(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetID("Marvin")
	a.GetID("Horton")

	// Do an *additional* get for Marvin, so he is more-recently-used
	a.GetID("Marvin")

	// Now when we add Sam, Horton gets pushed out
	a.GetID("Sam")
	a.LRUHas("Marvin")
	a.LRUDoesNotHave("Horton")
	a.LRUHas("Sam")
}

// TestLRURemoval does simple tests on Remove and Clear.
func TestLRURemoval(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetID("Marvin")
	a.LRU.Remove("Marvin")
	a.LRUDoesNotHave("Marvin")

	a.LRU.Remove("Sam")
	a.LRUDoesNotHave("Sam")

	// If we remove a more-recent thing, the older-but-present
	// thing shouldn't get evicted
	a.GetID("Marvin")
	a.GetID("Horton")
	a.LRU.Remove("Horton")
	a.GetID("Sam")
	a.LRUHas("Marvin")
	a.LRUDoesNotHave("Horton")
	a.LRUHas("Sam")

	a.LRU.Clear()
	a.Equal(0, a.LRU.Len())
	a.LRUDoesNotHave("Marvin")
}

// TestLRUCopies checks that cached records are not aliased.
func TestLRUCopies(t *testing.T) {
	a := NewLRUAssertions(t, 2)
	record := mapper.Record{"id": "x", "name": "before"}
	a.LRU.Put("x", record)
	record["name"] = "after"

	cached := a.LRU.Peek("x")
	a.Equal("before", cached["name"])
	cached["name"] = "again"
	a.Equal("before", a.LRU.Peek("x")["name"])
}
