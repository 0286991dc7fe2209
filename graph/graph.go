// graph.go - Knoten-Arena, Tensor-Register und Scope-Verwaltung
package graph

import (
	"errors"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/ollama/opexec/ml"
)

var (
	ErrStaleNode      = errors.New("node handle refers to a removed node")
	ErrUnknownTensor  = errors.New("unknown tensor")
	ErrNotConditional = errors.New("scope does not end in a boolean node")
	ErrMaxIterations  = errors.New("conditional scope exceeded iteration limit")
)

var lastScopeID atomic.Int64

// nextScopeID returns a process-unique scope id.
func nextScopeID() int {
	return int(lastScopeID.Add(1))
}

// Graph owns the nodes referenced by its scopes and the tensors their
// operations read and write. A Graph is not safe for concurrent mutation.
type Graph struct {
	nodes   []*Node
	tensors map[string]*ml.Tensor
	scopes  map[int]*Scope
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		tensors: make(map[string]*ml.Tensor),
		scopes:  make(map[int]*Scope),
	}
}

// AddNode stores n in the arena, assigns its ID and returns it.
func (g *Graph) AddNode(n *Node) NodeID {
	n.ID = NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return n.ID
}

// Node resolves a handle. It returns false for removed or unknown nodes.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(g.nodes) || g.nodes[id] == nil {
		return nil, false
	}
	return g.nodes[id], true
}

// RemoveNode deletes a node. Its handle is never reused, so scopes still
// holding it observe ErrStaleNode instead of a different node.
func (g *Graph) RemoveNode(id NodeID) bool {
	if _, ok := g.Node(id); !ok {
		return false
	}
	g.nodes[id] = nil
	return true
}

// SetTensor registers t under name, replacing any previous tensor.
func (g *Graph) SetTensor(name string, t *ml.Tensor) {
	g.tensors[name] = t.SetName(name)
}

// Tensor looks up a tensor by name.
func (g *Graph) Tensor(name string) (*ml.Tensor, bool) {
	t, ok := g.tensors[name]
	return t, ok
}

// TensorNames returns the registered tensor names in sorted order.
func (g *Graph) TensorNames() []string {
	return slices.Sorted(maps.Keys(g.tensors))
}

// NewScope creates and registers an empty scope with a fresh id.
func (g *Graph) NewScope(name string) *Scope {
	s := NewScope(nextScopeID(), name)
	g.scopes[s.ID()] = s
	return s
}

// CloneScope registers a copy of s under a fresh id and the given name.
func (g *Graph) CloneScope(s *Scope, name string) *Scope {
	c := s.Clone()
	c.id = nextScopeID()
	c.name = name
	g.scopes[c.ID()] = c
	return c
}

// Scope looks up a registered scope by id.
func (g *Graph) Scope(id int) (*Scope, bool) {
	s, ok := g.scopes[id]
	return s, ok
}

// Scopes returns the registered scopes ordered by id.
func (g *Graph) Scopes() []*Scope {
	scopes := slices.Collect(maps.Values(g.scopes))
	slices.SortFunc(scopes, func(a, b *Scope) int { return a.ID() - b.ID() })
	return scopes
}
