// node.go - Knoten-Modell fuer Scopes
package graph

import (
	"fmt"

	"github.com/ollama/opexec/dispatch"
	"github.com/ollama/opexec/kernels"
	"github.com/ollama/opexec/ml"
)

// NodeID is a handle into a Graph's node arena.
type NodeID int

// Predicate computes the boolean result of a condition node. iteration is
// the 1-based replay count of the enclosing scope.
type Predicate func(g *Graph, iteration int) (bool, error)

// Repeat returns a predicate that holds for the first n-1 iterations, so a
// conditional scope ending in it runs its body n times.
func Repeat(n int) Predicate {
	return func(_ *Graph, iteration int) (bool, error) {
		return iteration < n, nil
	}
}

// TensorTrue returns a predicate reading the first element of the named
// bool tensor.
func TensorTrue(name string) Predicate {
	return func(g *Graph, _ int) (bool, error) {
		t, ok := g.Tensor(name)
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrUnknownTensor, name)
		}
		return t.Bool()
	}
}

// Attrs are the operation specific scalars of a kernel node.
type Attrs struct {
	Descending bool
	Dims       []int
	Mode       kernels.ClipMode
	Shape      ml.Shape
	Threshold  float32
	Scheme     kernels.Scheme
}

// Node is one operation. A node either runs a dispatch family on the named
// tensors, or, if Predicate is set, produces a boolean.
type Node struct {
	ID      NodeID
	Name    string
	Family  dispatch.Family
	Inputs  []string
	Outputs []string
	Attrs   Attrs

	Predicate Predicate
}

// Boolean reports whether n produces a boolean result usable as the
// condition of a ConditionalScope.
func (n *Node) Boolean() bool {
	return n.Predicate != nil
}

func (n *Node) String() string {
	op := n.Family.String()
	if n.Boolean() {
		op = "predicate"
	}
	if n.Name == "" {
		return fmt.Sprintf("#%d %s", n.ID, op)
	}
	return fmt.Sprintf("#%d %s (%s)", n.ID, n.Name, op)
}
