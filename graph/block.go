// block.go - Ausfuehrbare Bloecke: unbedingt oder bedingt (Schleife)
package graph

import "fmt"

// Block is a scope together with how it is replayed. It is implemented by
// UnconditionalScope and ConditionalScope only.
type Block interface {
	Scope() *Scope
	block()
}

// UnconditionalScope runs its body once, in node order.
type UnconditionalScope struct {
	Body *Scope
}

func (b UnconditionalScope) Scope() *Scope { return b.Body }
func (UnconditionalScope) block()          {}

// ConditionalScope replays its body do-while style: all nodes up to and
// including the condition node run, then the body repeats while the
// condition produced true.
type ConditionalScope struct {
	Body *Scope

	// ConditionIndex is the position of the boolean node in Body.Nodes().
	ConditionIndex int
}

func (b ConditionalScope) Scope() *Scope { return b.Body }
func (ConditionalScope) block()          {}

// NewConditionalScope wraps body, whose last node must produce a boolean.
func NewConditionalScope(g *Graph, body *Scope) (ConditionalScope, error) {
	b := ConditionalScope{Body: body, ConditionIndex: body.Size() - 1}
	if err := b.check(g); err != nil {
		return ConditionalScope{}, err
	}
	return b, nil
}

// check verifies that the condition index still names the last node and
// that this node is boolean.
func (b ConditionalScope) check(g *Graph) error {
	nodes := b.Body.Nodes()
	if len(nodes) == 0 {
		return fmt.Errorf("%w: scope %d (%s) is empty", ErrNotConditional, b.Body.ID(), b.Body.Name())
	}
	if b.ConditionIndex != len(nodes)-1 {
		return fmt.Errorf("%w: condition at %d, scope %d (%s) has %d nodes", ErrNotConditional, b.ConditionIndex, b.Body.ID(), b.Body.Name(), len(nodes))
	}

	n, ok := g.Node(nodes[b.ConditionIndex])
	if !ok {
		return fmt.Errorf("%w: condition node %d", ErrStaleNode, nodes[b.ConditionIndex])
	}
	if !n.Boolean() {
		return fmt.Errorf("%w: scope %d (%s) ends in %s", ErrNotConditional, b.Body.ID(), b.Body.Name(), n)
	}
	return nil
}
