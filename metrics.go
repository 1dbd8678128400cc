// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "fern"
	// unmatchedRoute labels requests for which no route matched, so raw paths never become label values.
	unmatchedRoute = "_unmatched"
	// otherMethod labels unmatched requests whose method has no routing tree.
	otherMethod = "_other"

	outcomeMatched   = "matched"
	outcomeUnmatched = "unmatched"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "requests_total",
		Help:      "Total number of dispatched requests by method, route pattern and outcome.",
	}, []string{"method", "route", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "request_duration_seconds",
		Help:      "Time spent in matched route handlers, middleware included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &metrics{requests: requests, duration: duration}, nil
}

// register registers c on reg. Routers sharing a registry share the collectors registered first.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c, nil
}

func (m *metrics) matched(method, pattern string, elapsed time.Duration) {
	m.requests.WithLabelValues(method, pattern, outcomeMatched).Inc()
	m.duration.WithLabelValues(method, pattern).Observe(elapsed.Seconds())
}

func (m *metrics) unmatched(method string, known bool) {
	if !known {
		method = otherMethod
	}
	m.requests.WithLabelValues(method, unmatchedRoute, outcomeUnmatched).Inc()
}
