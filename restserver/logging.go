// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// RequestLogger is negroni middleware that logs one line per request.
// Server errors log at error level, client errors at warning level,
// and everything else at info level.
type RequestLogger struct {
	Logger logrus.FieldLogger

	// Clock measures request durations.  Tests can use a mock.
	Clock clock.Clock
}

// NewRequestLogger creates a RequestLogger on the real clock.
func NewRequestLogger(logger logrus.FieldLogger) *RequestLogger {
	return &RequestLogger{Logger: logger, Clock: clock.New()}
}

func (l *RequestLogger) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := l.Clock.Now()
	next(w, r)

	status := http.StatusOK
	if res, ok := w.(negroni.ResponseWriter); ok && res.Status() != 0 {
		status = res.Status()
	}
	entry := l.Logger.WithFields(logrus.Fields{
		"method":   r.Method,
		"path":     r.URL.Path,
		"status":   status,
		"duration": l.Clock.Now().Sub(start),
	})
	switch {
	case status >= 500:
		entry.Error("request")
	case status >= 400:
		entry.Warn("request")
	default:
		entry.Info("request")
	}
}
