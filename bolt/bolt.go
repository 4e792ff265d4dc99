// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package bolt provides a mapper.Container stored in a single bbolt
// database file.  Each resource is a bucket keyed by record
// identifier, holding CBOR-encoded records; resource definitions are
// kept in a separate bucket so that reopening the file restores them.
package bolt

import (
	"context"
	"sync"
	"time"

	"github.com/diffeo/go-restmount/cbordata"
	"github.com/diffeo/go-restmount/mapper"
	bbolt "go.etcd.io/bbolt"
)

// definitionBucket holds one CBOR-encoded Definition per resource.
var definitionBucket = []byte("_definitions")

// Container is a bbolt-backed mapper.Container.
type Container struct {
	db    *bbolt.DB
	codec *cbordata.Codec

	lock      sync.Mutex
	resources map[string]*mapper.Collection
}

// Open opens (creating if needed) a database file and loads the
// resources defined in it.
func Open(filename string) (*Container, error) {
	codec, err := cbordata.New()
	if err != nil {
		return nil, err
	}
	db, err := bbolt.Open(filename, 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	c := &Container{
		db:        db,
		codec:     codec,
		resources: make(map[string]*mapper.Collection),
	}
	if err := c.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the database file.
func (c *Container) Close() error {
	return c.db.Close()
}

func (c *Container) load() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(definitionBucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(name, data []byte) error {
			record, err := c.codec.Decode(data)
			if err != nil {
				return err
			}
			def, err := mapper.DecodeDefinition(record)
			if err != nil {
				return err
			}
			c.resources[def.Name] = c.collection(def)
			return nil
		})
	})
}

func (c *Container) collection(def mapper.Definition) *mapper.Collection {
	return mapper.NewCollection(def, &store{c: c, bucket: []byte(def.Name)})
}

// DefineMapper adds a resource and records its definition.
func (c *Container) DefineMapper(def mapper.Definition) (mapper.Mapper, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if _, present := c.resources[def.Name]; present {
		return nil, mapper.ErrDuplicateMapper{Name: def.Name}
	}
	data, err := c.codec.Encode(mapper.Record{
		"name":         def.Name,
		"endpoint":     def.Endpoint,
		"id_attribute": def.IDAttribute,
	})
	if err != nil {
		return nil, err
	}
	err = c.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(def.Name)); err != nil {
			return err
		}
		return tx.Bucket(definitionBucket).Put([]byte(def.Name), data)
	})
	if err != nil {
		return nil, err
	}
	resource := c.collection(def)
	c.resources[def.Name] = resource
	return resource, nil
}

// Mappers returns all of the defined resources.
func (c *Container) Mappers() map[string]mapper.Mapper {
	c.lock.Lock()
	defer c.lock.Unlock()

	result := make(map[string]mapper.Mapper, len(c.resources))
	for name, resource := range c.resources {
		result[name] = resource
	}
	return result
}

// store is one resource's bucket.
type store struct {
	c      *Container
	bucket []byte
}

func (s *store) Get(ctx context.Context, id string) (mapper.Record, bool, error) {
	var record mapper.Record
	err := s.c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(s.bucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		var err error
		record, err = s.c.codec.Decode(data)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return record, record != nil, nil
}

func (s *store) Put(ctx context.Context, id string, record mapper.Record) error {
	data, err := s.c.codec.Encode(record)
	if err != nil {
		return err
	}
	return s.c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(id), data)
	})
}

func (s *store) Delete(ctx context.Context, id string) error {
	return s.c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(id))
	})
}

// All returns records in identifier order.
func (s *store) All(ctx context.Context) ([]mapper.Record, error) {
	records := make([]mapper.Record, 0)
	err := s.c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(id, data []byte) error {
			record, err := s.c.codec.Decode(data)
			if err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	return records, err
}
