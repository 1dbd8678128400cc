package fern

func newIterator[T any](n *node[T]) *iterator[T] {
	return &iterator[T]{
		stack: []stack[T]{{edges: []edge[T]{{node: n}}}},
	}
}

// edge is a node reached either by a literal edge or, when param is set, by a parameter edge.
type edge[T any] struct {
	node  *node[T]
	param string
}

type iterator[T any] struct {
	stack   []stack[T]
	current *node[T]
	path    string
}

type stack[T any] struct {
	path  string
	edges []edge[T]
}

func (it *iterator[T]) fullPath() string {
	return it.path
}

func (it *iterator[T]) node() *node[T] {
	return it.current
}

func (it *iterator[T]) hasNextLeaf() bool {
	for it.hasNext() {
		if it.current.leaf {
			return true
		}
	}
	return false
}

func (it *iterator[T]) hasNext() bool {
	if len(it.stack) > 0 {
		n := len(it.stack)
		last := it.stack[n-1]
		elem := last.edges[0]

		if len(last.edges) > 1 {
			it.stack[n-1].edges = last.edges[1:]
		} else {
			it.stack = it.stack[:n-1]
		}

		path := last.path
		if elem.param != "" {
			path += ":" + elem.param
		}
		path += elem.node.prefix

		if edges := outgoing(elem.node); len(edges) > 0 {
			it.stack = append(it.stack, stack[T]{path, edges})
		}

		it.current = elem.node
		it.path = path
		return true
	}

	it.current = nil
	it.path = ""
	return false
}

// outgoing returns the literal edges of n in ascending order followed by its parameter edge.
func outgoing[T any](n *node[T]) []edge[T] {
	keys := n.childKeys()
	edges := make([]edge[T], 0, len(keys)+1)
	for _, k := range keys {
		edges = append(edges, edge[T]{node: n.children[k]})
	}
	if n.wildcard != nil {
		edges = append(edges, edge[T]{node: n.wildcard.node, param: n.wildcard.name})
	}
	return edges
}
