// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"net/http"
)

// WrapF is an adapter for wrapping http.HandlerFunc and returns a Handler function.
// The route parameters are accessible with [ParamsFromContext].
func WrapF(f http.HandlerFunc) Handler {
	return WrapH(f)
}

// WrapH is an adapter for wrapping http.Handler and returns a Handler function.
// The route parameters are accessible with [ParamsFromContext].
func WrapH(h http.Handler) Handler {
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request, params Params) {
		if len(params) > 0 && ParamsFromContext(r.Context()) == nil {
			r = r.WithContext(withRoute(r.Context(), RouteFromContext(r.Context()), params))
		}
		h.ServeHTTP(w, r)
	})
}

// WrapM is an adapter for wrapping http middleware and returns a MiddlewareFunc. The wrapped middleware
// may replace the request, in which case the new one is passed down the chain.
func WrapM(m func(http.Handler) http.Handler) MiddlewareFunc {
	return func(next Handler) Handler {
		return HandlerFunc(func(w http.ResponseWriter, r *http.Request, params Params) {
			m(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r, params)
			})).ServeHTTP(w, r)
		})
	}
}

// NewTestResponseWriter returns a ResponseWriter recording status and size of the response written to w,
// designed only for testing middleware outside a Router.
func NewTestResponseWriter(w http.ResponseWriter) ResponseWriter {
	rec := new(recorder)
	rec.reset(w)
	return rec
}
