// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Command restmountd serves a set of resources over the conventional
// REST interface provided by the restserver package.
//
// Resources are listed in a YAML file:
//
//     path: /api
//     cache: 1024
//     resources:
//       - name: user
//       - name: todo
//         endpoint: todos
//         id_attribute: key
//
// Settings can also come from the environment, or from a .env file in
// the current directory: RESTMOUNT_BACKEND names the storage backend
// as for the -backend flag.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/diffeo/go-restmount/backend"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	httpBind := flag.String("http", ":5980",
		"[ip]:port for HTTP REST interface")
	backend := backend.Backend{Implementation: "memory", Address: ""}
	if env := os.Getenv("RESTMOUNT_BACKEND"); env != "" {
		if err := backend.Set(env); err != nil {
			logrus.WithFields(logrus.Fields{
				"err": err,
			}).Fatal("Invalid RESTMOUNT_BACKEND")
			return
		}
	}
	flag.Var(&backend, "backend", "impl[:address] of the storage backend")
	config := flag.String("config", "", "resource configuration YAML file")
	logRequests := flag.Bool("log-requests", false, "log all requests")
	flag.Parse()

	cfg := &fileConfig{}
	if *config != "" {
		var err error
		cfg, err = loadConfigYaml(*config)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"err": err,
			}).Fatal("Could not load YAML configuration")
			return
		}
	}
	if cfg.Cache > 0 {
		backend.Cache = cfg.Cache
	}

	container, err := backend.Container()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err":     err,
			"backend": backend.String(),
		}).Fatal("Could not create backend")
		return
	}
	err = defineResources(container, cfg)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not define resources")
		return
	}

	var reqLogger *logrus.Logger
	if *logRequests {
		stdlog := logrus.StandardLogger()
		reqLogger = &logrus.Logger{
			Out:       stdlog.Out,
			Formatter: stdlog.Formatter,
			Hooks:     stdlog.Hooks,
			Level:     logrus.DebugLevel,
		}
	}

	handler, err := newHandler(container, cfg, reqLogger)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not build HTTP handler")
		return
	}
	logrus.WithFields(logrus.Fields{
		"http":    *httpBind,
		"backend": backend.String(),
		"path":    cfg.Path,
	}).Info("Serving")
	err = http.ListenAndServe(*httpBind, handler)
	logrus.WithFields(logrus.Fields{
		"err": err,
	}).Fatal("HTTP server stopped")
}
