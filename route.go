// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"net/http"
)

// Route represents an immutable HTTP route registered on a [Router].
type Route struct {
	handler Handler
	hall    Handler
	method  string
	pattern string
}

// Method returns the HTTP method of the route.
func (r *Route) Method() string {
	return r.method
}

// Pattern returns the registered route pattern.
func (r *Route) Pattern() string {
	return r.pattern
}

// Handle calls the registered handler, without the router middleware.
func (r *Route) Handle(w http.ResponseWriter, req *http.Request, params Params) {
	r.handler.ServeHTTP(w, req, params)
}

func (r *Route) String() string {
	return r.method + " " + r.pattern
}
