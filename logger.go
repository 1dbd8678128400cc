// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tigerwill90/fern/internal/slogpretty"
)

// LoggerWithHandler returns middleware that logs request information using the provided slog.Handler.
// It logs details such as the remote IP, HTTP method, request path, matched route, status code and latency.
func LoggerWithHandler(handler slog.Handler) MiddlewareFunc {
	log := slog.New(handler)
	return func(next Handler) Handler {
		return HandlerFunc(func(w http.ResponseWriter, r *http.Request, params Params) {
			start := time.Now()
			next.ServeHTTP(w, r, params)
			latency := time.Since(start)

			status, size := http.StatusOK, 0
			if rw, ok := w.(ResponseWriter); ok {
				status, size = rw.Status(), rw.Size()
			}

			var pattern string
			if route := RouteFromContext(r.Context()); route != nil {
				pattern = route.Pattern()
			}

			log.LogAttrs(
				r.Context(),
				level(status),
				remoteIP(r),
				slog.Int("status", status),
				slog.String("method", r.Method),
				slog.String("path", r.URL.String()),
				slog.String("route", pattern),
				slog.Int("size", size),
				slog.Duration("latency", roundLatency(latency)),
			)
		})
	}
}

// Logger returns middleware that logs request information to os.Stdout and os.Stderr.
// It logs details such as the remote IP, HTTP method, request path, matched route, status code and latency.
func Logger() MiddlewareFunc {
	return LoggerWithHandler(slogpretty.DefaultHandler)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "unknown"
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return "unknown"
	}
	return ip.String()
}

func level(status int) slog.Level {
	switch {
	case status >= 200 && status < 300:
		return slog.LevelInfo
	case status >= 300 && status < 400:
		return slog.LevelDebug
	case status >= 400 && status < 500:
		return slog.LevelWarn
	case status >= 500:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func roundLatency(d time.Duration) time.Duration {
	switch {
	case d < 1*time.Microsecond:
		return d.Round(100 * time.Nanosecond)
	case d < 1*time.Millisecond:
		return d.Round(10 * time.Microsecond)
	case d < 10*time.Millisecond:
		return d.Round(100 * time.Microsecond)
	case d < 100*time.Millisecond:
		return d.Round(1 * time.Millisecond)
	case d < 1*time.Second:
		return d.Round(10 * time.Millisecond)
	case d < 10*time.Second:
		return d.Round(100 * time.Millisecond)
	default:
		return d.Round(1 * time.Second)
	}
}
