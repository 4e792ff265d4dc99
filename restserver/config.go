// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/diffeo/go-restmount/restdata"
	"github.com/sirupsen/logrus"
)

// Hook is a request or response hook.  It must call next exactly
// once: with nil to continue to the next stage, or with an error to
// abort the request and pass the error to the error handler.  A
// response hook owns the response and is expected to write it.
type Hook func(w http.ResponseWriter, req *Request, next func(error))

// Action produces the result of an operation.  A non-nil error aborts
// the request and is passed to the error handler unchanged.
type Action func(ctx context.Context, m mapper.Mapper, req *Request) (interface{}, error)

// ToJSONFunc converts an action result into the value sent as the
// response body.
type ToJSONFunc func(m mapper.Mapper, result interface{}, opts mapper.Options) (interface{}, error)

// ErrorHandler writes a response for an error that aborted a request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ToJSONMode says whether a configuration level serializes results
// through the Mapper.
type ToJSONMode int

const (
	// ToJSONUnset defers to the next level of configuration.
	ToJSONUnset ToJSONMode = iota

	// ToJSONRaw sends results as the action returned them.
	ToJSONRaw

	// ToJSONMapper sends results through Mapper.ToJSON.
	ToJSONMapper
)

// OperationConfig customizes one operation.  Zero values fall back to
// the defaults.
type OperationConfig struct {
	// Action replaces the default Mapper call.
	Action Action

	// Request runs before the action.
	Request Hook

	// Response, if set, replaces the default response stage
	// entirely; the status code and serializer settings are not
	// used.
	Response Hook

	// StatusCode replaces the operation's default success status.
	StatusCode int

	// ToJSON serializes this operation's results, and takes
	// precedence over ToJSONMode.
	ToJSON ToJSONFunc

	// ToJSONMode enables or disables Mapper serialization for
	// this operation.
	ToJSONMode ToJSONMode
}

// Config holds the settings for a router.  A router copies its
// Config when it is built; later changes have no effect.
type Config struct {
	// Path is where Mount places the routes.  Empty means "/".
	Path string

	// Request runs once for every request the router handles,
	// before any route-specific processing.
	Request Hook

	// ToJSON serializes results for every operation that does not
	// configure its own serializer.
	ToJSON ToJSONFunc

	// ToJSONMode disables Mapper serialization for every
	// operation that does not configure its own.
	ToJSONMode ToJSONMode

	// GetEndpoint returns the URL path segment for a resource.
	// If nil, the resource's Endpoint() is used, or its
	// registered name if that is empty.
	GetEndpoint func(m mapper.Mapper) string

	// Operations holds per-operation settings.
	Operations map[Operation]OperationConfig

	// ErrorHandler writes error responses.  Defaults to
	// restdata.WriteError.
	ErrorHandler ErrorHandler

	// Logger receives diagnostics.  Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

// normalize returns a copy of cfg with defaults filled in and its
// operation map copied.
func (cfg Config) normalize() Config {
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = restdata.WriteError
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	ops := make(map[Operation]OperationConfig, len(cfg.Operations))
	for op, opCfg := range cfg.Operations {
		ops[op] = opCfg
	}
	cfg.Operations = ops
	return cfg
}

// operation returns the settings for a single operation.
func (cfg *Config) operation(op Operation) OperationConfig {
	if cfg.Operations == nil {
		return OperationConfig{}
	}
	return cfg.Operations[op]
}

// endpoint returns the path segment, with a leading slash, for a
// resource registered under name.
func (cfg *Config) endpoint(name string, m mapper.Mapper) string {
	var endpoint string
	if cfg.GetEndpoint != nil {
		endpoint = cfg.GetEndpoint(m)
	} else {
		endpoint = m.Endpoint()
		if endpoint == "" {
			endpoint = name
		}
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return strings.TrimSuffix(endpoint, "/")
}

// statusCode returns the success status for op.
func (cfg *Config) statusCode(op Operation) int {
	if status := cfg.operation(op).StatusCode; status != 0 {
		return status
	}
	return op.DefaultStatus()
}

// mapperToJSON serializes through the Mapper.
func mapperToJSON(m mapper.Mapper, result interface{}, opts mapper.Options) (interface{}, error) {
	return m.ToJSON(result, opts)
}

// rawToJSON sends the result unchanged.
func rawToJSON(m mapper.Mapper, result interface{}, opts mapper.Options) (interface{}, error) {
	return result, nil
}

// toJSONCandidate is one level of serializer configuration.  pick
// returns nil if the level does not decide.
type toJSONCandidate struct {
	label string
	pick  func(op OperationConfig, cfg *Config) ToJSONFunc
}

// toJSONPrecedence lists the serializer settings from most to least
// specific.  The first candidate that picks a function wins.
var toJSONPrecedence = []toJSONCandidate{
	{"operation function", func(op OperationConfig, cfg *Config) ToJSONFunc {
		return op.ToJSON
	}},
	{"operation raw", func(op OperationConfig, cfg *Config) ToJSONFunc {
		if op.ToJSONMode == ToJSONRaw {
			return rawToJSON
		}
		return nil
	}},
	{"operation mapper", func(op OperationConfig, cfg *Config) ToJSONFunc {
		if op.ToJSONMode == ToJSONMapper {
			return mapperToJSON
		}
		return nil
	}},
	{"resource function", func(op OperationConfig, cfg *Config) ToJSONFunc {
		return cfg.ToJSON
	}},
	{"resource raw", func(op OperationConfig, cfg *Config) ToJSONFunc {
		if cfg.ToJSONMode == ToJSONRaw {
			return rawToJSON
		}
		return nil
	}},
	{"default", func(op OperationConfig, cfg *Config) ToJSONFunc {
		return mapperToJSON
	}},
}

// resolveToJSON picks the serializer for op, and names the level
// that chose it.
func resolveToJSON(op Operation, cfg *Config) (string, ToJSONFunc) {
	opCfg := cfg.operation(op)
	for _, candidate := range toJSONPrecedence {
		if f := candidate.pick(opCfg, cfg); f != nil {
			return candidate.label, f
		}
	}
	// The last candidate always picks
	panic("no serializer for " + string(op))
}
