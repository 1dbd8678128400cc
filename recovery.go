// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/tigerwill90/fern/internal/slogpretty"
)

// RecoveryFunc is a function type that defines how to handle panics that occur during the
// handling of an HTTP request.
type RecoveryFunc func(w http.ResponseWriter, r *http.Request, err any)

// Recovery returns a middleware that recovers from panics, logs them to os.Stderr with the stack trace and
// responds with http.StatusInternalServerError if nothing was written yet. See [CustomRecoveryWithLogHandler].
func Recovery() MiddlewareFunc {
	return CustomRecoveryWithLogHandler(slogpretty.DefaultHandler, DefaultHandleRecovery)
}

// CustomRecovery is like Recovery but calls handle with the value recovered from the panic.
func CustomRecovery(handle RecoveryFunc) MiddlewareFunc {
	return CustomRecoveryWithLogHandler(slogpretty.DefaultHandler, handle)
}

// CustomRecoveryWithLogHandler returns a middleware that captures panics, logs them using handler and calls
// handle with the recovered value. Note that the middleware check if the panic is caused by http.ErrAbortHandler
// and re-panic if true, allowing the http server to handle it as an abort.
func CustomRecoveryWithLogHandler(handler slog.Handler, handle RecoveryFunc) MiddlewareFunc {
	log := slog.New(handler)
	return func(next Handler) Handler {
		return HandlerFunc(func(w http.ResponseWriter, r *http.Request, params Params) {
			defer recovery(log, w, r, handle)
			next.ServeHTTP(w, r, params)
		})
	}
}

// DefaultHandleRecovery responds with http.StatusInternalServerError and a generic error message,
// unless the response has already been written or the connection is broken.
func DefaultHandleRecovery(w http.ResponseWriter, _ *http.Request, err any) {
	if rw, ok := w.(ResponseWriter); ok && rw.Written() {
		return
	}
	if connIsBroken(err) {
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func recovery(log *slog.Logger, w http.ResponseWriter, r *http.Request, handle RecoveryFunc) {
	if err := recover(); err != nil {
		if abortErr, ok := err.(error); ok && errors.Is(abortErr, http.ErrAbortHandler) {
			panic(abortErr)
		}

		var pattern string
		if route := RouteFromContext(r.Context()); route != nil {
			pattern = route.Pattern()
		}
		log.LogAttrs(
			r.Context(),
			slog.LevelError,
			"panic recovered",
			slog.String("method", r.Method),
			slog.String("route", pattern),
			slog.Any("error", err),
			slog.String("stack", string(debug.Stack())),
		)
		handle(w, r, err)
	}
}

func connIsBroken(err any) bool {
	if ne, ok := err.(*net.OpError); ok {
		var se *os.SyscallError
		if errors.As(ne, &se) {
			seStr := strings.ToLower(se.Error())
			return strings.Contains(seStr, "broken pipe") || strings.Contains(seStr, "connection reset by peer")
		}
	}
	return false
}
