package pathtree

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Tree maps patterns to values. At every segment position a literal child is
// tried before a parameter child, which is tried before a catch-all. When a
// more specific branch dead-ends the search backtracks into the next one.
type Tree[V any] struct {
	root node[V]
	size int
}

type entry[V any] struct {
	pattern *Pattern
	value   V
}

type node[V any] struct {
	statics   map[string]*node[V]
	param     *node[V]
	paramName string
	catchAll  *entry[V]
	leaf      *entry[V]
}

// Match is the result of a successful lookup.
type Match[V any] struct {
	Value   V
	Pattern *Pattern
	Params  map[string]string
}

// New returns an empty tree.
func New[V any]() *Tree[V] {
	return &Tree[V]{}
}

// Len returns the number of patterns in the tree.
func (t *Tree[V]) Len() int { return t.size }

// Insert adds the pattern to the tree. Inserting a pattern twice fails with
// [ErrDuplicate], naming a parameter differently from an existing one at the
// same position fails with [ErrParamConflict].
func (t *Tree[V]) Insert(p *Pattern, v V) error {
	n := &t.root

	for _, seg := range p.segs {
		switch seg.Kind {
		case Literal:
			if n.statics == nil {
				n.statics = make(map[string]*node[V])
			}
			child, ok := n.statics[seg.Value]
			if !ok {
				child = &node[V]{}
				n.statics[seg.Value] = child
			}
			n = child
		case Param:
			if n.param == nil {
				n.param, n.paramName = &node[V]{}, seg.Value
			} else if n.paramName != seg.Value {
				return errors.Wrapf(ErrParamConflict, ":%s conflicts with existing :%s in %q",
					seg.Value, n.paramName, p.str)
			}
			n = n.param
		case CatchAll:
			if n.catchAll != nil {
				if existing := n.catchAll.pattern.segs[len(n.catchAll.pattern.segs)-1].Value; existing != seg.Value {
					return errors.Wrapf(ErrParamConflict, "*%s conflicts with existing *%s in %q",
						seg.Value, existing, p.str)
				}
				return errors.Wrapf(ErrDuplicate, "%q", p.str)
			}
			n.catchAll = &entry[V]{pattern: p, value: v}
			t.size++

			return nil
		}
	}

	if n.leaf != nil {
		return errors.Wrapf(ErrDuplicate, "%q", p.str)
	}

	n.leaf = &entry[V]{pattern: p, value: v}
	t.size++

	return nil
}

// Lookup resolves path to the most specific matching pattern.
func (t *Tree[V]) Lookup(path string) (Match[V], bool) {
	segs := SplitPath(path)
	vals := make([]string, 0, 4)

	e, vals := t.root.match(segs, vals)
	if e == nil {
		return Match[V]{}, false
	}

	var params map[string]string
	if names := e.pattern.ParamNames(); len(names) > 0 {
		params = make(map[string]string, len(names))
		for i, name := range names {
			params[name] = vals[i]
		}
	}

	return Match[V]{Value: e.value, Pattern: e.pattern, Params: params}, true
}

func (n *node[V]) match(segs []string, vals []string) (*entry[V], []string) {
	if len(segs) == 0 {
		if n.leaf == nil && n.catchAll != nil {
			return n.catchAll, append(vals, "")
		}

		return n.leaf, vals
	}

	seg := segs[0]
	if child, ok := n.statics[seg]; ok {
		if e, out := child.match(segs[1:], vals); e != nil {
			return e, out
		}
	}

	if n.param != nil && seg != "" {
		if e, out := n.param.match(segs[1:], append(vals, seg)); e != nil {
			return e, out
		}
	}

	if n.catchAll != nil {
		return n.catchAll, append(vals, strings.Join(segs, "/"))
	}

	return nil, vals
}

// Patterns returns every pattern in the tree, sorted by their string form.
func (t *Tree[V]) Patterns() []*Pattern {
	pats := make([]*Pattern, 0, t.size)
	t.root.walk(func(e *entry[V]) { pats = append(pats, e.pattern) })
	sort.Slice(pats, func(i, j int) bool { return pats[i].str < pats[j].str })

	return pats
}

func (n *node[V]) walk(fn func(*entry[V])) {
	if n.leaf != nil {
		fn(n.leaf)
	}

	for _, child := range n.statics {
		child.walk(fn)
	}

	if n.param != nil {
		n.param.walk(fn)
	}

	if n.catchAll != nil {
		fn(n.catchAll)
	}
}
