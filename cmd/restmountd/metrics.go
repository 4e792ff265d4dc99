// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/negroni"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diffeo",
			Subsystem: "restmount",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code",
		},
		[]string{"method", "code"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "diffeo",
			Subsystem: "restmount",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	resourceCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "diffeo",
			Subsystem: "restmount",
			Name:      "resources",
			Help:      "Number of mounted resources",
		},
	)
)

func init() {
	prometheus.MustRegister(requestCount, requestDuration, resourceCount)
}

// observeRequest is negroni middleware that records request counts
// and latencies.
func observeRequest(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	timer := prometheus.NewTimer(requestDuration.WithLabelValues(r.Method))
	next(w, r)
	timer.ObserveDuration()

	status := http.StatusOK
	if res, ok := w.(negroni.ResponseWriter); ok && res.Status() != 0 {
		status = res.Status()
	}
	requestCount.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
}
