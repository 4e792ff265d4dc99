// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cbordata stores records as CBOR.  The bolt and postgres
// backends keep each record as one CBOR blob.
//
// Decoded records are normalized so they look like records decoded
// from JSON: byte strings become strings, maps become string-keyed,
// and UUIDs (CBOR tag 37) become their canonical string form.
package cbordata

import (
	"reflect"

	"github.com/diffeo/go-restmount/mapper"
	uuid "github.com/satori/go.uuid"
	"github.com/ugorji/go/codec"
)

// uuidExt is a codec extension plugin to encode and decode UUID
// objects.
type uuidExt struct{}

func (x uuidExt) WriteExt(v interface{}) []byte {
	panic("uuidExt.WriteExt not implemented")
}

func (x uuidExt) ReadExt(v interface{}, data []byte) {
	panic("uuidExt.ReadExt not implemented")
}

func (x uuidExt) ConvertExt(v interface{}) interface{} {
	switch u := v.(type) {
	case uuid.UUID:
		return u.Bytes()
	case *uuid.UUID:
		return u.Bytes()
	}
	panic("uuidExt.ConvertExt given a non-UUID")
}

func (x uuidExt) UpdateExt(dest interface{}, v interface{}) {
	bytes := v.([]byte)
	if len(bytes) != 16 {
		panic("encoded UUID must have 16 bytes")
	}
	uuidp := dest.(*uuid.UUID)
	*uuidp = uuid.UUID{}
	copy(uuidp[:], bytes)
}

// SetExts sets up the CBOR codec to understand UUIDs.
func SetExts(cbor *codec.CborHandle) error {
	return cbor.SetExt(reflect.TypeOf(uuid.UUID{}), 37, uuidExt{})
}

// NewHandle creates a CBOR handle that decodes maps as
// map[string]interface{} and understands UUIDs.
func NewHandle() (*codec.CborHandle, error) {
	cbor := &codec.CborHandle{}
	cbor.MapType = reflect.TypeOf(map[string]interface{}(nil))
	if err := SetExts(cbor); err != nil {
		return nil, err
	}
	return cbor, nil
}

// Codec encodes and decodes records.  A Codec is safe for concurrent
// use once created.
type Codec struct {
	cbor *codec.CborHandle
}

// New creates a Codec.
func New() (*Codec, error) {
	cbor, err := NewHandle()
	if err != nil {
		return nil, err
	}
	return &Codec{cbor: cbor}, nil
}

// Encode converts a record to CBOR bytes.
func (c *Codec) Encode(record mapper.Record) ([]byte, error) {
	var out []byte
	encoder := codec.NewEncoderBytes(&out, c.cbor)
	err := encoder.Encode(map[string]interface{}(record))
	return out, err
}

// Decode converts CBOR bytes back to a record.
func (c *Codec) Decode(data []byte) (mapper.Record, error) {
	var raw interface{}
	decoder := codec.NewDecoderBytes(data, c.cbor)
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}
	record := StringKeyedMap(Normalize(raw))
	if record == nil {
		return nil, mapper.ErrNotRecord
	}
	return mapper.Record(record), nil
}
