// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
)

// commonVerbs define http method for which trees are pre instantiated.
var commonVerbs = [...]string{http.MethodGet, http.MethodPost}

// Table maps HTTP methods to a routing [Tree] of values of type T. It is the unit applications register
// routes against and query at request time.
//
// Routes are registered during a single-threaded configuration phase. Once the last route is registered,
// the table may be shared freely: any number of goroutines may call Resolve concurrently without locking,
// since each call allocates its own Params. Freeze makes this contract explicit by rejecting further
// registration.
type Table[T any] struct {
	trees  map[string]*Tree[T]
	logger *slog.Logger
	delims string
	fold   bool
	frozen atomic.Bool
}

// NewTable returns a new Table with empty GET and POST trees.
func NewTable[T any](opts ...Option) (*Table[T], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return newTable[T](cfg), nil
}

func newTable[T any](cfg *config) *Table[T] {
	t := &Table[T]{
		trees:  make(map[string]*Tree[T], len(commonVerbs)),
		logger: cfg.logger,
		delims: cfg.delims,
		fold:   !cfg.strictCase,
	}
	for _, method := range commonVerbs {
		t.trees[method] = newTree[T](cfg.delims)
	}
	return t
}

// Handle registers value for the given method and pattern. The pattern must start with '/'. Any segment
// starting with ':' declares a named parameter. Registering an existing pattern replaces its value.
// It returns a [ParamConflictError] if another parameter name is registered at the same position, an error
// wrapping ErrInvalidRoute for malformed input, or ErrFrozen once the table is frozen.
func (t *Table[T]) Handle(method, pattern string, value T) error {
	if t.frozen.Load() {
		return fmt.Errorf("%w: cannot register route [%s] %s", ErrFrozen, method, pattern)
	}
	if method == "" {
		return fmt.Errorf("%w: missing http method", ErrInvalidRoute)
	}
	if !strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("%w: pattern %q must start with '/'", ErrInvalidRoute, pattern)
	}

	tree, ok := t.trees[method]
	if !ok {
		tree = newTree[T](t.delims)
	}

	if err := tree.Insert(pattern, value); err != nil {
		var conflict *ParamConflictError
		if errors.As(err, &conflict) {
			conflict.Method = method
		}
		return err
	}
	t.trees[method] = tree

	if t.fold && hasUpperLiteral(pattern, t.delims) {
		t.logger.Warn("route has upper case literal and cannot be resolved", slog.String("method", method), slog.String("pattern", pattern))
	}
	t.logger.Debug("route registered", slog.String("method", method), slog.String("pattern", pattern))
	return nil
}

// Route registers value for the given method and pattern. Unlike Handle, any registration error
// is a fatal configuration error and Route panics with it.
func (t *Table[T]) Route(method, pattern string, value T) {
	if err := t.Handle(method, pattern, value); err != nil {
		panic(err)
	}
}

// Get is a shortcut for Route(http.MethodGet, pattern, value).
func (t *Table[T]) Get(pattern string, value T) {
	t.Route(http.MethodGet, pattern, value)
}

// Post is a shortcut for Route(http.MethodPost, pattern, value).
func (t *Table[T]) Post(pattern string, value T) {
	t.Route(http.MethodPost, pattern, value)
}

// Put is a shortcut for Route(http.MethodPut, pattern, value).
func (t *Table[T]) Put(pattern string, value T) {
	t.Route(http.MethodPut, pattern, value)
}

// Delete is a shortcut for Route(http.MethodDelete, pattern, value).
func (t *Table[T]) Delete(pattern string, value T) {
	t.Route(http.MethodDelete, pattern, value)
}

// Patch is a shortcut for Route(http.MethodPatch, pattern, value).
func (t *Table[T]) Patch(pattern string, value T) {
	t.Route(http.MethodPatch, pattern, value)
}

// Head is a shortcut for Route(http.MethodHead, pattern, value).
func (t *Table[T]) Head(pattern string, value T) {
	t.Route(http.MethodHead, pattern, value)
}

// Options is a shortcut for Route(http.MethodOptions, pattern, value).
func (t *Table[T]) Options(pattern string, value T) {
	t.Route(http.MethodOptions, pattern, value)
}

// Resolve returns the value matching method and path, with the parameters captured from path. Unless
// [WithStrictCase] is set, the literal part of path is matched ASCII case-insensitively, so routes must be
// registered in lower case. Parameter values keep the case of the request: /Users/Bob matches /users/:name
// with name=Bob. A miss is reported with ok false, never with an error.
func (t *Table[T]) Resolve(method, path string) (value T, params Params, ok bool) {
	tree, found := t.trees[method]
	if !found {
		return value, nil, false
	}
	return tree.lookup(path, t.fold)
}

// Lookup is like Resolve but always compares path byte by byte with the registered patterns.
func (t *Table[T]) Lookup(method, path string) (value T, params Params, ok bool) {
	tree, found := t.trees[method]
	if !found {
		return value, nil, false
	}
	return tree.Lookup(path)
}

// Freeze ends the registration phase. Subsequent calls to Handle return ErrFrozen.
func (t *Table[T]) Freeze() {
	t.frozen.Store(true)
}

// Frozen reports whether Freeze has been called.
func (t *Table[T]) Frozen() bool {
	return t.frozen.Load()
}

// Methods returns the methods having a routing tree in lexicographical order, including the
// pre-instantiated GET and POST trees.
func (t *Table[T]) Methods() []string {
	methods := make([]string, 0, len(t.trees))
	for method := range t.trees {
		methods = append(methods, method)
	}
	slices.Sort(methods)
	return methods
}

// Len returns the number of registered routes for all methods.
func (t *Table[T]) Len() int {
	var n int
	for _, tree := range t.trees {
		n += tree.Len()
	}
	return n
}

// TableWalkFunc is the type of the function called by Table.Walk for each registered route.
type TableWalkFunc[T any] func(method, pattern string, value T) error

// Walk calls fn for each registered route, method by method in lexicographical order. If fn returns
// ErrSkipMethod, the remaining routes of the current method are skipped. Any other error stops the walk
// and is returned.
func (t *Table[T]) Walk(fn TableWalkFunc[T]) error {
	for _, method := range t.Methods() {
		err := t.trees[method].Walk(func(pattern string, value T) error {
			return fn(method, pattern, value)
		})
		if err != nil {
			if errors.Is(err, ErrSkipMethod) {
				continue
			}
			return err
		}
	}
	return nil
}

func (t *Table[T]) String() string {
	sb := strings.Builder{}
	for _, method := range t.Methods() {
		tree := t.trees[method]
		if tree.Len() == 0 {
			continue
		}
		sb.WriteString(method)
		sb.WriteByte('\n')
		sb.WriteString(tree.String())
	}
	return sb.String()
}

func (t *Table[T]) hasMethod(method string) bool {
	_, ok := t.trees[method]
	return ok
}
