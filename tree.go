// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"errors"
)

// Tree implements a compressed prefix tree over route patterns. A pattern is a '/' delimited string where
// any segment starting with ':' introduces a named parameter consuming the request path up to the next
// delimiter. Literal edges never share a leading byte, and each node has at most one parameter edge.
//
// A Tree is built then frozen: Insert is not safe for concurrent use, but once the last route
// is inserted, any number of goroutines may call Lookup concurrently without coordination.
type Tree[T any] struct {
	root   *node[T]
	delims string
	size   int
}

// NewTree returns a new empty Tree. Only the [WithParamDelimiter] option affects a Tree,
// other options are validated and ignored.
func NewTree[T any](opts ...Option) (*Tree[T], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return newTree[T](cfg.delims), nil
}

func newTree[T any](delims string) *Tree[T] {
	return &Tree[T]{delims: delims}
}

// Insert associates value to pattern. Registering the same pattern twice replaces the previous value.
// It returns an error wrapping ErrInvalidRoute if the pattern is malformed, or a [ParamConflictError] if
// another parameter name is already registered at the same position. The tree is left untouched on error.
func (t *Tree[T]) Insert(pattern string, value T) error {
	if err := validatePattern(pattern, t.delims); err != nil {
		return err
	}

	if t.root == nil {
		t.root = newNode(pattern, value, t.delims)
		t.size++
		return nil
	}

	added, err := t.root.insert(pattern, value, t.delims)
	if err != nil {
		var conflict *ParamConflictError
		if errors.As(err, &conflict) {
			conflict.Pattern = pattern
		}
		return err
	}
	if added {
		t.size++
	}
	return nil
}

// Lookup returns the value registered for path and the parameters captured along the way. The comparison
// is byte exact. The returned Params is nil when the matched route has no parameter.
func (t *Tree[T]) Lookup(path string) (value T, params Params, ok bool) {
	return t.lookup(path, false)
}

func (t *Tree[T]) lookup(path string, fold bool) (value T, params Params, ok bool) {
	if t.root == nil {
		return value, nil, false
	}
	n, params := t.root.lookup(path, fold, t.delims)
	if n == nil {
		return value, nil, false
	}
	return n.value, params, true
}

// Len returns the number of registered routes.
func (t *Tree[T]) Len() int {
	return t.size
}

// WalkFunc is the type of the function called by Walk for each registered route.
type WalkFunc[T any] func(pattern string, value T) error

// Walk calls fn for each registered route, literal edges first in ascending byte order then the
// parameter edge. If fn returns an error, the walk stops and the error is returned.
func (t *Tree[T]) Walk(fn WalkFunc[T]) error {
	if t.root == nil {
		return nil
	}
	it := newIterator(t.root)
	for it.hasNextLeaf() {
		if err := fn(it.fullPath(), it.node().value); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree[T]) String() string {
	if t.root == nil {
		return ""
	}
	return t.root.String()
}
