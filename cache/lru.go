// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

// This file provides a simple LRU cache of records keyed by
// identifier.  Records are copied on the way in and on the way out,
// so nothing outside the cache can change a cached record.

import (
	"container/list"
	"sync"

	"github.com/diffeo/go-restmount/mapper"
)

// entry is one cached record.
type entry struct {
	id     string
	record mapper.Record
}

// lru is a least-recently-used cache with a fixed capacity.  The cache
// can be safely accessed from multiple goroutines.
type lru struct {
	size      int
	lock      sync.RWMutex
	evictList *list.List
	index     map[string]*list.Element
}

func newLRU(size int) *lru {
	return &lru{
		size:      size,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get retrieves a record from the cache.  If it is not present, calls
// the fetch function, and if that succeeds, saves the record and
// returns it.  This should return an error only if the record is not
// present and the fetch function returns an error.
func (lru *lru) Get(id string, fetch func(string) (mapper.Record, error)) (mapper.Record, error) {
	// This sadly happens under a writer lock, since we need to move
	// the item to the front of the list if it is present
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[id]; present {
		lru.evictList.MoveToBack(element)
		return element.Value.(*entry).record.Clone(), nil
	}

	record, err := fetch(id)
	if err != nil {
		return nil, err
	}
	lru.add(id, record.Clone())
	return record, nil
}

// Peek looks for a record in the cache and returns it if present, or
// returns nil if absent.  This does not affect the recency of the
// record.
func (lru *lru) Peek(id string) mapper.Record {
	lru.lock.RLock()
	defer lru.lock.RUnlock()

	if element, present := lru.index[id]; present {
		return element.Value.(*entry).record.Clone()
	}
	return nil
}

// Put adds a record to the LRU cache, possibly evicting something.
func (lru *lru) Put(id string, record mapper.Record) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[id]; present {
		element.Value.(*entry).record = record.Clone()
		lru.evictList.MoveToBack(element)
		return
	}
	lru.add(id, record.Clone())
}

// Remove takes a record out of the cache.  It does nothing if that
// identifier is not cached.
func (lru *lru) Remove(id string) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[id]; present {
		delete(lru.index, id)
		lru.evictList.Remove(element)
	}
}

// Clear empties the cache.
func (lru *lru) Clear() {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	lru.evictList.Init()
	lru.index = make(map[string]*list.Element)
}

// Len returns the number of cached records.
func (lru *lru) Len() int {
	lru.lock.RLock()
	defer lru.lock.RUnlock()
	return len(lru.index)
}

// add is an internal helper, running under the write lock, that adds a
// new record to the cache.  The identifier is known to not already
// exist.
func (lru *lru) add(id string, record mapper.Record) {
	element := lru.evictList.PushBack(&entry{id: id, record: record})
	lru.index[id] = element

	for len(lru.index) > lru.size {
		head := lru.evictList.Front()
		delete(lru.index, head.Value.(*entry).id)
		lru.evictList.Remove(head)
	}
}
