// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"net/http"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
)

// ErrNotComponent is returned from NewRouter if it is given something
// that is neither a mapper.Container nor a mapper.Mapper.
var ErrNotComponent = errors.New("component must be a mapper.Container or mapper.Mapper")

// Route describes one route a Router serves.
type Route struct {
	Method string
	Path   string

	// Operations lists the operations the route can run.  POST
	// and PUT on a collection pick one by the body's shape.
	Operations []Operation

	// Resource is the name of the Mapper behind the route.
	Resource string
}

// Router serves the REST routes for a container or a single mapper.
type Router struct {
	mux     *mux.Router
	handler http.Handler
	routes  []Route
}

// NewRouter builds the routes for component, which must be a
// mapper.Container or a mapper.Mapper.  A container's resources are
// placed under their endpoints, in name order; a mapper is placed at
// the root.  cfg.Request runs once per request, ahead of every route.
func NewRouter(component interface{}, cfg Config) (*Router, error) {
	return newRouter(component, cfg, "")
}

func newRouter(component interface{}, cfg Config, prefix string) (*Router, error) {
	cfg = cfg.normalize()
	rt := &Router{mux: mux.NewRouter()}

	// The global hook is applied here, once; nested resources
	// never see it.
	global := cfg.Request
	cfg.Request = nil
	if err := rt.populate(component, &cfg, prefix); err != nil {
		return nil, err
	}

	n := negroni.New(negroni.HandlerFunc(bodyParser(cfg.ErrorHandler)))
	if global != nil {
		n.Use(hookMiddleware(global, cfg.ErrorHandler))
	}
	n.UseHandler(rt.mux)
	rt.handler = n
	return rt, nil
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

// Routes returns the routes in the order they were added.
func (rt *Router) Routes() []Route {
	routes := make([]Route, len(rt.routes))
	copy(routes, rt.routes)
	return routes
}

func (rt *Router) populate(component interface{}, cfg *Config, prefix string) error {
	switch c := component.(type) {
	case mapper.Container:
		mappers := c.Mappers()
		for _, name := range mapper.SortedNames(c) {
			m := mappers[name]
			if err := rt.populate(m, cfg, prefix+cfg.endpoint(name, m)); err != nil {
				return err
			}
		}
		return nil
	case mapper.Mapper:
		rt.populateMapper(c, cfg, prefix)
		return nil
	default:
		return ErrNotComponent
	}
}

func (rt *Router) populateMapper(m mapper.Mapper, cfg *Config, prefix string) {
	collection := prefix
	if collection == "" {
		collection = "/"
	}
	item := prefix + "/{id}"

	handlers := make(map[Operation]http.Handler)
	for _, op := range Operations() {
		handlers[op] = NewPipeline(op, m, cfg)
	}

	rt.add(m, "GET", collection, handlers[FindAll], FindAll)
	rt.add(m, "POST", collection,
		byBodyShape(handlers[CreateMany], handlers[Create], cfg.ErrorHandler),
		CreateMany, Create)
	rt.add(m, "PUT", collection,
		byBodyShape(handlers[UpdateMany], handlers[UpdateAll], cfg.ErrorHandler),
		UpdateMany, UpdateAll)
	rt.add(m, "DELETE", collection, handlers[DestroyAll], DestroyAll)
	rt.add(m, "GET", item, handlers[Find], Find)
	rt.add(m, "PUT", item, handlers[Update], Update)
	rt.add(m, "DELETE", item, handlers[Destroy], Destroy)
}

func (rt *Router) add(m mapper.Mapper, method, path string, h http.Handler, ops ...Operation) {
	rt.mux.Path(path).Methods(method).Handler(h)
	rt.routes = append(rt.routes, Route{
		Method:     method,
		Path:       path,
		Operations: ops,
		Resource:   m.Name(),
	})
}

// byBodyShape sends array bodies to batch and everything else to
// single.
func byBodyShape(batch, single http.Handler, onError ErrorHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, r := requestFor(r)
		if err := req.ReadBody(); err != nil {
			onError(w, r, err)
			return
		}
		if ClassifyBody(req.Body) == Batch {
			batch.ServeHTTP(w, r)
		} else {
			single.ServeHTTP(w, r)
		}
	})
}

// bodyParser decodes POST and PUT bodies before any hook runs.
func bodyParser(onError ErrorHandler) negroni.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		req, r := requestFor(r)
		if r.Method == "POST" || r.Method == "PUT" {
			if err := req.ReadBody(); err != nil {
				onError(w, r, err)
				return
			}
		}
		next(w, r)
	}
}

// hookMiddleware runs a Hook as negroni middleware.
func hookMiddleware(hook Hook, onError ErrorHandler) negroni.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		req, r := requestFor(r)
		hook(w, req, func(err error) {
			if err != nil {
				onError(w, r, err)
				return
			}
			next(w, r)
		})
	}
}
