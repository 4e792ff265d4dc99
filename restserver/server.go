// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/diffeo/go-restmount/restdata"
	"github.com/gorilla/mux"
)

// NewServer creates an HTTP handler that serves every resource in c
// under cfg.Path.  For more control over this setup, create a
// mux.Router and call Mount instead:
//
//     import "github.com/diffeo/go-restmount/memory"
//     import "github.com/gorilla/mux"
//     r := mux.NewRouter()
//     c := memory.New()
//     restserver.MountPath(r, c, "/api")
func NewServer(c mapper.Container, cfg Config) (http.Handler, error) {
	r := mux.NewRouter()
	if _, err := Mount(r, c, cfg); err != nil {
		return nil, err
	}
	return r, nil
}

// WriteJSON writes v as a JSON response with the given status.  It is
// a convenience for response hooks.
func WriteJSON(w http.ResponseWriter, req *Request, status int, v interface{}) error {
	w.Header().Set("Content-Type", responseType(req.HTTP))
	w.WriteHeader(status)
	return restdata.Encode(w, v)
}
