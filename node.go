// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"slices"
	"strings"
)

type node[T any] struct {
	// Outgoing literal edges keyed by the first byte of the child prefix. A nil map means no literal child.
	children map[byte]*node[T]

	// At most one parameter edge. Literal children are always tried first during lookup.
	wildcard *param[T]

	// prefix represent a segment of a route which share a common prefix with its parent.
	prefix string

	// The registered value, only meaningful if leaf is true.
	value T
	leaf  bool
}

type param[T any] struct {
	node *node[T]
	name string
}

// newNode creates the chain of nodes for pattern, storing value on the last one.
func newNode[T any](pattern string, value T, delims string) *node[T] {
	literal, rest := splitParam(pattern)
	n := &node[T]{prefix: literal}
	if rest == "" {
		n.value = value
		n.leaf = true
		return n
	}
	n.wildcard = newParam(rest, value, delims)
	return n
}

// newParam creates a parameter edge from a token starting with ':'.
func newParam[T any](token string, value T, delims string) *param[T] {
	name, rest := paramToken(token, delims)
	return &param[T]{
		name: name,
		node: newNode(rest, value, delims),
	}
}

// match walks pattern and the node prefix in lock-step. It returns the number of matching bytes
// and whether the walk stopped on a parameter token.
func (n *node[T]) match(pattern string) (int, bool) {
	i := 0
	for ; i < len(pattern); i++ {
		if isParamStart(pattern, i) {
			return i, true
		}
		if i >= len(n.prefix) || pattern[i] != n.prefix[i] {
			break
		}
	}
	return i, false
}

// split carves n in two at offset i. The new child receives the remainder of the prefix
// together with the value, children and wildcard of n.
func (n *node[T]) split(i int) {
	child := &node[T]{
		prefix:   n.prefix[i:],
		value:    n.value,
		leaf:     n.leaf,
		children: n.children,
		wildcard: n.wildcard,
	}

	var zero T
	n.prefix = n.prefix[:i]
	n.value = zero
	n.leaf = false
	n.wildcard = nil
	n.children = map[byte]*node[T]{child.prefix[0]: child}
}

func (n *node[T]) addChild(child *node[T]) {
	if n.children == nil {
		n.children = make(map[byte]*node[T], 1)
	}
	n.children[child.prefix[0]] = child
}

// insert adds pattern below n and reports whether a new route was created, as opposed to replacing
// the value of an existing one. It returns a ParamConflictError without mutating the tree if a different
// parameter name is already registered at the same position.
func (n *node[T]) insert(pattern string, value T, delims string) (bool, error) {
	for {
		i, atParam := n.match(pattern)
		if i < len(n.prefix) {
			n.split(i)
		}

		rest := pattern[i:]
		if atParam {
			if n.wildcard == nil {
				n.wildcard = newParam(rest, value, delims)
				return true, nil
			}

			name, tail := paramToken(rest, delims)
			if name != n.wildcard.name {
				return false, &ParamConflictError{Existing: n.wildcard.name, Conflicting: name}
			}
			n = n.wildcard.node
			pattern = tail
			continue
		}

		if rest == "" {
			added := !n.leaf
			n.value = value
			n.leaf = true
			return added, nil
		}

		child := n.children[rest[0]]
		if child == nil {
			n.addChild(newNode(rest, value, delims))
			return true, nil
		}
		n = child
		pattern = rest
	}
}

// lookup returns the node matching path and the captured parameters. With fold, the literal
// bytes of path are compared ASCII case-insensitively while captured values keep their case.
// Once a literal child is chosen, there is no backtracking into the sibling wildcard edge.
// A wildcard edge is only taken when path has bytes left, but the captured segment may be empty.
func (n *node[T]) lookup(path string, fold bool, delims string) (*node[T], Params) {
	var params Params
	for {
		if !hasPrefix(path, n.prefix, fold) {
			return nil, nil
		}

		path = path[len(n.prefix):]
		if path == "" {
			if n.leaf {
				return n, params
			}
			return nil, nil
		}

		c := path[0]
		if fold {
			c = toLower(c)
		}
		if child := n.children[c]; child != nil {
			n = child
			continue
		}

		if n.wildcard == nil {
			return nil, nil
		}

		value, rest := splitAtDelimiter(path, delims)
		if params == nil {
			params = make(Params, 1)
		}
		params[n.wildcard.name] = value
		n = n.wildcard.node
		path = rest
	}
}

// childKeys returns the first byte of each literal edge in ascending order.
func (n *node[T]) childKeys() []byte {
	keys := make([]byte, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (n *node[T]) String() string {
	sb := strings.Builder{}
	n.string(&sb, 0)
	return sb.String()
}

func (n *node[T]) string(sb *strings.Builder, space int) {
	sb.WriteString(strings.Repeat(" ", space))
	sb.WriteString("path: ")
	sb.WriteString(n.prefix)
	if n.leaf {
		sb.WriteString(" (leaf)")
	}
	sb.WriteByte('\n')

	for _, k := range n.childKeys() {
		n.children[k].string(sb, space+2)
	}

	if n.wildcard != nil {
		sb.WriteString(strings.Repeat(" ", space+2))
		sb.WriteString("param: :")
		sb.WriteString(n.wildcard.name)
		sb.WriteByte('\n')
		n.wildcard.node.string(sb, space+4)
	}
}
