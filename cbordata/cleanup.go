// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cbordata

import (
	"fmt"

	uuid "github.com/satori/go.uuid"
)

// SloppyString converts a string or []byte to a string, or returns nil.
func SloppyString(obj interface{}) *string {
	switch str := obj.(type) {
	case string:
		return &str
	case []byte:
		s := string(str)
		return &s
	default:
		return nil
	}
}

// StringKeyedMap tries to convert an arbitrary object to a string-keyed
// map.  If this fails (because obj isn't a map or because any of its keys
// aren't strings) returns nil without further explanation.
func StringKeyedMap(obj interface{}) map[string]interface{} {
	switch m := obj.(type) {
	case map[string]interface{}:
		return m
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(m))
		for key, value := range m {
			keyAsString := SloppyString(key)
			if keyAsString == nil {
				return nil
			}
			result[*keyAsString] = value
		}
		return result
	default:
		return nil
	}
}

// Normalize rewrites a decoded value, recursively, into the shapes a
// JSON decoder would produce.
func Normalize(obj interface{}) interface{} {
	switch v := obj.(type) {
	case []byte:
		return string(v)
	case uuid.UUID:
		return v.String()
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = Normalize(item)
		}
		return result
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[key] = Normalize(value)
		}
		return result
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if s := SloppyString(key); s != nil {
				result[*s] = Normalize(value)
			} else {
				result[fmt.Sprint(key)] = Normalize(value)
			}
		}
		return result
	default:
		return obj
	}
}
