// Package graph - Execution-Scopes, Knoten-Arena und Replay-Executor
//
// Ein Scope haelt eine geordnete Liste von Knoten-Handles, die wiederholt
// in genau dieser Reihenfolge ausgefuehrt wird. Die Reihenfolge kommt vom
// Aufrufer (topologisch sortiert); der Scope sortiert und prueft nichts.
package graph

import "slices"

// Scope is an ordered, named and identified list of node handles intended
// for repeated sequential replay. Handles index into the owning Graph's node
// arena; the scope does not own the nodes.
//
// A Scope is not safe for concurrent mutation. Concurrent reads of an
// unchanging scope are fine.
type Scope struct {
	id    int
	name  string
	nodes []NodeID
}

// NewScope returns an empty scope. name may be empty.
func NewScope(id int, name string) *Scope {
	return &Scope{id: id, name: name}
}

// Append adds a node handle at the end. Duplicates are kept; nodes must be
// appended in execution order.
func (s *Scope) Append(id NodeID) {
	s.nodes = append(s.nodes, id)
}

// Nodes returns the live node list in execution order. The slice is shared
// with the scope and is invalidated by Append and ForgetNodes.
func (s *Scope) Nodes() []NodeID {
	return s.nodes
}

// Size returns the number of nodes.
func (s *Scope) Size() int {
	return len(s.nodes)
}

func (s *Scope) ID() int {
	return s.id
}

func (s *Scope) Name() string {
	return s.name
}

// Last returns the final node handle, if any.
func (s *Scope) Last() (NodeID, bool) {
	if len(s.nodes) == 0 {
		return 0, false
	}
	return s.nodes[len(s.nodes)-1], true
}

// Clone returns a scope with the same id, name and node handles. The node
// list is copied, so later changes to either scope do not affect the other;
// the nodes themselves are shared.
func (s *Scope) Clone() *Scope {
	return &Scope{id: s.id, name: s.name, nodes: slices.Clone(s.nodes)}
}

// ForgetNodes empties the node list and keeps id and name.
func (s *Scope) ForgetNodes() {
	s.nodes = nil
}
