// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/diffeo/go-restmount/restdata"
	"github.com/sirupsen/logrus"
)

// NewActionHandler returns the stage that runs op's action, the
// configured one or the default Mapper call, and stores its result
// on the request.
func NewActionHandler(op Operation, m mapper.Mapper, cfg *Config) Hook {
	action := cfg.operation(op).Action
	if action == nil {
		action = op.DefaultAction()
	}
	return func(w http.ResponseWriter, req *Request, next func(error)) {
		result, err := action(req.Context(), m, req)
		if err != nil {
			next(err)
			return
		}
		req.Result = result
		next(nil)
	}
}

// NewResponseHandler returns the stage that writes op's response.  A
// configured response hook is returned as is.  Otherwise the stage
// writes the success status and, if there is a result, the result
// passed through the serializer picked by the most specific
// configuration.
func NewResponseHandler(op Operation, m mapper.Mapper, cfg *Config) Hook {
	if hook := cfg.operation(op).Response; hook != nil {
		return hook
	}
	status := cfg.statusCode(op)
	label, toJSON := resolveToJSON(op, cfg)
	logger := loggerFor(cfg).WithFields(logrus.Fields{
		"operation":  op,
		"resource":   m.Name(),
		"serializer": label,
	})
	return func(w http.ResponseWriter, req *Request, next func(error)) {
		var body interface{}
		if req.Result != nil {
			var err error
			body, err = toJSON(m, req.Result, req.Options)
			if err != nil {
				next(err)
				return
			}
		}
		if body != nil {
			w.Header().Set("Content-Type", responseType(req.HTTP))
		}
		w.WriteHeader(status)
		if body != nil {
			// The status line is out; log and carry on
			if err := restdata.Encode(w, body); err != nil {
				logger.WithError(err).Warn("failed to write response")
			}
		}
		next(nil)
	}
}

// pipeline runs one operation's stages in order.
type pipeline struct {
	stages  []Hook
	onError ErrorHandler
	logger  logrus.FieldLogger
}

// NewPipeline builds the handler for op on m: the operation's request
// hook, if any, then the action, then the response stage.  Any stage
// that passes an error to its continuation ends the request at
// cfg.ErrorHandler.
func NewPipeline(op Operation, m mapper.Mapper, cfg *Config) http.Handler {
	p := &pipeline{
		onError: cfg.ErrorHandler,
		logger: loggerFor(cfg).WithFields(logrus.Fields{
			"operation": op,
			"resource":  m.Name(),
		}),
	}
	if p.onError == nil {
		p.onError = restdata.WriteError
	}
	if hook := cfg.operation(op).Request; hook != nil {
		p.stages = append(p.stages, hook)
	}
	p.stages = append(p.stages,
		NewActionHandler(op, m, cfg),
		NewResponseHandler(op, m, cfg),
	)
	return p
}

func (p *pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, _ := requestFor(r)
	req.setParams()

	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			response := restdata.ErrorResponse{}
			response.FromPanic(recovered)
			p.logger.WithField("panic", response.Message).Error("handler panicked")
			w.Header().Set("Content-Type", restdata.V1JSONMediaType)
			w.WriteHeader(http.StatusInternalServerError)
			_ = restdata.Encode(w, response)
		}
	}()

	p.run(w, req, 0)
}

func (p *pipeline) run(w http.ResponseWriter, req *Request, stage int) {
	if stage >= len(p.stages) {
		return
	}
	called := false
	p.stages[stage](w, req, func(err error) {
		if called {
			p.logger.WithField("stage", stage).Warn("continuation called twice")
			return
		}
		called = true
		if err != nil {
			p.onError(w, req.HTTP, err)
			return
		}
		p.run(w, req, stage+1)
	})
}

func loggerFor(cfg *Config) logrus.FieldLogger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return logrus.StandardLogger()
}
