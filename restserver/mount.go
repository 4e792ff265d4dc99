// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diffeo/go-restmount/directive"
	"github.com/diffeo/go-restmount/mapper"
	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
)

// ErrNotContainer is returned from Mount if it is not given a
// mapper.Container.
var ErrNotContainer = errors.New("mount requires a mapper.Container")

// Mount adds the REST routes for c to r under cfg.Path, with the
// query parser ahead of them.  Routes are matched by path prefix on
// whole segments, so a container mounted at "/" shadows any route
// added to r after it, but one mounted at "/api" does not shadow
// "/apiary".
// Each call is independent; a container may be mounted at several
// paths.
func Mount(r *mux.Router, c interface{}, cfg Config) (*Router, error) {
	container, isContainer := c.(mapper.Container)
	if !isContainer {
		return nil, ErrNotContainer
	}
	cfg = cfg.normalize()
	prefix := mountPrefix(cfg.Path)
	rt, err := newRouter(container, cfg, prefix)
	if err != nil {
		return nil, err
	}
	n := negroni.New(QueryParser(cfg.ErrorHandler), negroni.Wrap(rt))
	if prefix == "" {
		r.PathPrefix("/").Handler(n)
	} else {
		// Match whole path segments only, so /api leaves /apiary
		// to later routes
		r.Path(prefix).Handler(n)
		r.PathPrefix(prefix + "/").Handler(n)
	}
	return rt, nil
}

// MountPath is Mount with only a path.
func MountPath(r *mux.Router, c interface{}, path string) (*Router, error) {
	return Mount(r, c, Config{Path: path})
}

// mountPrefix turns a mount path into a route prefix: "" for the
// root, otherwise a path with a leading slash and no trailing one.
func mountPrefix(path string) string {
	path = strings.TrimSuffix(path, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// QueryParser returns middleware that moves the with directive from
// the query string into the request options and decodes the where
// and orderBy directives.  A malformed orderBy clause goes to
// onError.
func QueryParser(onError ErrorHandler) negroni.Handler {
	return negroni.HandlerFunc(func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		req, r := requestFor(r)
		if !req.parsed {
			query, opts := directive.Extract(req.Query)
			query, err := directive.Parse(query)
			if err != nil {
				onError(w, r, err)
				return
			}
			for k, v := range opts {
				req.Options[k] = v
			}
			req.Query = query
			req.parsed = true
		}
		next(w, r)
	})
}
