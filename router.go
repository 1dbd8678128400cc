// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Handler respond to an HTTP request.
//
// This interface enforce the same contract as http.Handler except that matched parameters are accessible
// via params. The same Params are also installed in the request context and can be retrieved with
// [ParamsFromContext].
//
// As for http.Handler interface, to abort a handler so the client sees an interrupted response, panic with
// the value http.ErrAbortHandler.
type Handler interface {
	ServeHTTP(http.ResponseWriter, *http.Request, Params)
}

// HandlerFunc is an adapter to allow the use of ordinary functions as HTTP handlers. If f is a function with the
// appropriate signature, HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(http.ResponseWriter, *http.Request, Params)

// ServeHTTP calls f(w, r, params).
func (f HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request, params Params) {
	f(w, r, params)
}

// MiddlewareFunc is a function type for implementing [Handler] middleware. The returned Handler usually
// wraps the input Handler, allowing you to perform operations before and/or after it is executed.
type MiddlewareFunc func(next Handler) Handler

// Router dispatches requests to the handler registered for their method and path. It is the middleware
// face of a [Table]: when no route matches, control is handed to the continuation supplied by the caller
// (see [Router.Dispatch] and [Router.Middleware]), or to the not found handler with [Router.ServeHTTP].
//
// Routes and middleware are registered first, from a single goroutine. The first dispatched request
// freezes the router: middleware chains are built once and any further registration panics with ErrFrozen.
// From then on, the router is safe for concurrent use without locking.
type Router struct {
	table    *Table[*Route]
	notFound http.Handler
	logger   *slog.Logger
	metrics  *metrics
	pool     sync.Pool
	mws      []MiddlewareFunc
	once     sync.Once
}

var _ http.Handler = (*Router)(nil)

// New returns a ready to use Router.
func New(opts ...Option) (*Router, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	r := &Router{
		table:    newTable[*Route](cfg),
		notFound: cfg.notFound,
		logger:   cfg.logger,
		mws:      cfg.mws,
	}
	if cfg.registerer != nil {
		if r.metrics, err = newMetrics(cfg.registerer); err != nil {
			return nil, err
		}
	}
	r.pool = sync.Pool{
		New: func() any {
			return new(recorder)
		},
	}
	return r, nil
}

// MustNew is like New but panics on invalid options.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Handle registers a new handler for the given method and pattern and returns the created route.
// Registering an existing pattern replaces its handler. Registration errors, such as two parameter names
// competing at the same position, are configuration errors: Handle panics with them.
func (r *Router) Handle(method, pattern string, handler Handler) *Route {
	if handler == nil {
		panic(fmt.Errorf("%w: nil handler for [%s] %s", ErrInvalidRoute, method, pattern))
	}
	route := &Route{
		method:  method,
		pattern: pattern,
		handler: handler,
	}
	r.table.Route(method, pattern, route)
	return route
}

// HandleFunc registers a new handler function for the given method and pattern. See [Router.Handle].
func (r *Router) HandleFunc(method, pattern string, handler func(http.ResponseWriter, *http.Request, Params)) *Route {
	if handler == nil {
		panic(fmt.Errorf("%w: nil handler for [%s] %s", ErrInvalidRoute, method, pattern))
	}
	return r.Handle(method, pattern, HandlerFunc(handler))
}

// Get is a shortcut for Handle(http.MethodGet, pattern, handler).
func (r *Router) Get(pattern string, handler Handler) *Route {
	return r.Handle(http.MethodGet, pattern, handler)
}

// Post is a shortcut for Handle(http.MethodPost, pattern, handler).
func (r *Router) Post(pattern string, handler Handler) *Route {
	return r.Handle(http.MethodPost, pattern, handler)
}

// Put is a shortcut for Handle(http.MethodPut, pattern, handler).
func (r *Router) Put(pattern string, handler Handler) *Route {
	return r.Handle(http.MethodPut, pattern, handler)
}

// Delete is a shortcut for Handle(http.MethodDelete, pattern, handler).
func (r *Router) Delete(pattern string, handler Handler) *Route {
	return r.Handle(http.MethodDelete, pattern, handler)
}

// Patch is a shortcut for Handle(http.MethodPatch, pattern, handler).
func (r *Router) Patch(pattern string, handler Handler) *Route {
	return r.Handle(http.MethodPatch, pattern, handler)
}

// Head is a shortcut for Handle(http.MethodHead, pattern, handler).
func (r *Router) Head(pattern string, handler Handler) *Route {
	return r.Handle(http.MethodHead, pattern, handler)
}

// Options is a shortcut for Handle(http.MethodOptions, pattern, handler).
func (r *Router) Options(pattern string, handler Handler) *Route {
	return r.Handle(http.MethodOptions, pattern, handler)
}

// Use appends middleware to every route of the router, the first one being the outermost. Middleware
// are applied when the router is frozen, so Use affects routes registered before and after the call.
// It panics with ErrFrozen once the router is frozen.
func (r *Router) Use(m ...MiddlewareFunc) {
	if r.table.Frozen() {
		panic(fmt.Errorf("%w: cannot add middleware", ErrFrozen))
	}
	for i := range m {
		if m[i] == nil {
			panic(fmt.Errorf("%w: middleware cannot be nil", ErrInvalidConfig))
		}
	}
	r.mws = append(r.mws, m...)
}

// Freeze ends the registration phase. It is called automatically on the first dispatched request.
func (r *Router) Freeze() {
	r.once.Do(r.freeze)
}

func (r *Router) freeze() {
	_ = r.table.Walk(func(_, _ string, route *Route) error {
		route.hall = applyMiddleware(r.mws, route.handler)
		return nil
	})
	r.table.Freeze()
	r.logger.Debug("router frozen", slog.Int("routes", r.table.Len()), slog.Int("middlewares", len(r.mws)))
}

// Lookup returns the route matching method and path, using the same case normalization as request dispatching.
// This function is safe for concurrent use by multiple goroutine once the router is frozen.
func (r *Router) Lookup(method, path string) (*Route, Params, bool) {
	return r.table.Resolve(method, path)
}

// Routes calls fn for every registered route, method by method in lexicographical order. Returning
// ErrSkipMethod from fn skips the remaining routes of the current method.
func (r *Router) Routes(fn func(route *Route) error) error {
	return r.table.Walk(func(_, _ string, route *Route) error {
		return fn(route)
	})
}

// Dispatch resolves the request method and path. On match, the captured Params and the matched [Route] are
// installed in the request context and the route handler is invoked. Otherwise, control is handed to next.
func (r *Router) Dispatch(w http.ResponseWriter, req *http.Request, next http.Handler) {
	r.Freeze()

	route, params, ok := r.table.Resolve(req.Method, req.URL.Path)
	if !ok {
		if r.metrics != nil {
			r.metrics.unmatched(req.Method, r.table.hasMethod(req.Method))
		}
		next.ServeHTTP(w, req)
		return
	}

	if span := trace.SpanFromContext(req.Context()); span.IsRecording() {
		span.SetAttributes(attribute.String("http.route", route.pattern))
	}

	req = req.WithContext(withRoute(req.Context(), route, params))
	rec := r.pool.Get().(*recorder)
	rec.reset(w)

	start := time.Now()
	route.hall.ServeHTTP(rec, req, params)
	if r.metrics != nil {
		r.metrics.matched(route.method, route.pattern, time.Since(start))
	}

	rec.reset(nil)
	r.pool.Put(rec)
}

// Middleware returns an http.Handler dispatching to the router and falling back to next when no route matches.
// It panics with ErrInvalidConfig if next is nil.
func (r *Router) Middleware(next http.Handler) http.Handler {
	if next == nil {
		panic(fmt.Errorf("%w: next handler cannot be nil", ErrInvalidConfig))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.Dispatch(w, req, next)
	})
}

// ServeHTTP is the main entry point to serve a request. It dispatches the request to the matching route
// or to the not found handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Dispatch(w, req, r.notFound)
}

func applyMiddleware(mws []MiddlewareFunc, h Handler) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
