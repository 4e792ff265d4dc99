// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package mapper

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// DefaultIDAttribute is the record key holding the identifier when a
// Definition does not name one.
const DefaultIDAttribute = "id"

// Definition describes a resource to a backend.
type Definition struct {
	// Name is the registered name of the resource.
	Name string

	// Endpoint optionally overrides the URL path segment for
	// the resource.
	Endpoint string

	// IDAttribute names the record key holding the identifier.
	// Defaults to "id".
	IDAttribute string `mapstructure:"id_attribute"`
}

// ErrNoDefinitionName is returned from DecodeDefinition if the map has
// no "name" key.
var ErrNoDefinitionName = errors.New("No 'name' key in resource definition")

// DecodeDefinition builds a Definition from a string-keyed map, such
// as one read from a YAML configuration file.
func DecodeDefinition(in map[string]interface{}) (def Definition, err error) {
	config := mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &def,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(in)
	}
	if err == nil && def.Name == "" {
		err = ErrNoDefinitionName
	}
	return
}

// IDKey returns the record key holding the identifier.
func (def Definition) IDKey() string {
	if def.IDAttribute == "" {
		return DefaultIDAttribute
	}
	return def.IDAttribute
}

// ID returns the string form of a record's identifier, and whether it
// had one at all.
func (def Definition) ID(record Record) (string, bool) {
	value, present := record[def.IDKey()]
	if !present || value == nil {
		return "", false
	}
	return fmt.Sprint(value), true
}

// AsRecord converts a decoded value into a Record.  Values decoded from
// JSON arrive as map[string]interface{}; anything that is not a map
// returns ErrNotRecord.
func AsRecord(value interface{}) (Record, error) {
	switch v := value.(type) {
	case Record:
		return v, nil
	case map[string]interface{}:
		return Record(v), nil
	case map[interface{}]interface{}:
		record := make(Record, len(v))
		for key, item := range v {
			record[fmt.Sprint(key)] = item
		}
		return record, nil
	default:
		return nil, ErrNotRecord
	}
}

// AsRecords converts a decoded list into a slice of Records.
func AsRecords(value interface{}) ([]Record, error) {
	switch v := value.(type) {
	case []Record:
		return v, nil
	case []interface{}:
		records := make([]Record, len(v))
		for i, item := range v {
			record, err := AsRecord(item)
			if err != nil {
				return nil, err
			}
			records[i] = record
		}
		return records, nil
	case []map[string]interface{}:
		records := make([]Record, len(v))
		for i, item := range v {
			records[i] = Record(item)
		}
		return records, nil
	default:
		return nil, ErrNotRecord
	}
}

// Clone makes a deep copy of a record.  Nested maps and lists are
// copied; other values are shared.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]interface{}(r)).(map[string]interface{})
}

func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case Record:
		return Record(cloneValue(map[string]interface{}(v)).(map[string]interface{}))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

// Merge copies every key of props into r, returning r.
func (r Record) Merge(props Record) Record {
	for key, value := range props {
		r[key] = cloneValue(value)
	}
	return r
}

// ToJSON is the default serializer shared by the bundled backends.  It
// returns deep copies of records and record slices so that callers can
// not alias backend state; other values pass through.
func ToJSON(result interface{}, opts Options) (interface{}, error) {
	switch v := result.(type) {
	case Record:
		return map[string]interface{}(v.Clone()), nil
	case []Record:
		out := make([]interface{}, len(v))
		for i, record := range v {
			out[i] = map[string]interface{}(record.Clone())
		}
		return out, nil
	default:
		return result, nil
	}
}

// SortedNames returns the keys of a container's resources in sorted
// order.
func SortedNames(c Container) []string {
	mappers := c.Mappers()
	names := make([]string, 0, len(mappers))
	for name := range mappers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a resource in a container by name, returning
// ErrNoSuchMapper if it is absent.
func Lookup(c Container, name string) (Mapper, error) {
	m, present := c.Mappers()[name]
	if !present {
		return nil, ErrNoSuchMapper{Name: name}
	}
	return m, nil
}
