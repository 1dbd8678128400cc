// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	netcontext "context"
	"maps"
)

type ctxKey uint8

const (
	// paramsKey is the key that holds the Params in a context.Context.
	paramsKey ctxKey = iota
	// routeKey is the key that holds the matched *Route in a context.Context.
	routeKey
)

// Params maps parameter names to the values captured from the request path. Each lookup
// produces its own Params, so it can be kept or modified freely by the caller.
type Params map[string]string

// Get the matching parameter value by name.
func (p Params) Get(name string) string {
	return p[name]
}

// Has checks whether the parameter exists by name.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Clone make a copy of Params.
func (p Params) Clone() Params {
	return maps.Clone(p)
}

// ParamsFromContext allows extracting params from the given context.
func ParamsFromContext(ctx netcontext.Context) Params {
	p, _ := ctx.Value(paramsKey).(Params)
	return p
}

// RouteFromContext returns the route matched by the [Router] for the request carrying ctx, or nil.
func RouteFromContext(ctx netcontext.Context) *Route {
	r, _ := ctx.Value(routeKey).(*Route)
	return r
}

func withRoute(ctx netcontext.Context, route *Route, params Params) netcontext.Context {
	ctx = netcontext.WithValue(ctx, routeKey, route)
	if len(params) > 0 {
		ctx = netcontext.WithValue(ctx, paramsKey, params)
	}
	return ctx
}
