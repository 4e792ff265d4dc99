// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"

	"github.com/diffeo/go-restmount/mapper"
	"github.com/diffeo/go-restmount/restserver"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// newHandler builds the complete HTTP handler: the mounted resources,
// a /metrics endpoint, and request metrics and logging around both.
// If reqLogger is nil, requests are not logged.
func newHandler(c mapper.Container, cfg *fileConfig, reqLogger *logrus.Logger) (http.Handler, error) {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	_, err := restserver.Mount(r, c, restserver.Config{
		Path:   cfg.Path,
		Logger: logrus.StandardLogger(),
	})
	if err != nil {
		return nil, err
	}

	n := negroni.New()
	n.UseFunc(observeRequest)
	if reqLogger != nil {
		n.Use(restserver.NewRequestLogger(reqLogger))
	}
	n.UseHandler(r)
	return n, nil
}
