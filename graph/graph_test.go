package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollama/opexec/dispatch"
	"github.com/ollama/opexec/ml"
)

func TestGraphNodes(t *testing.T) {
	g := New()
	a := g.AddNode(&Node{Name: "a", Family: dispatch.FamilySort})
	b := g.AddNode(&Node{Name: "b", Family: dispatch.FamilySort})

	n, ok := g.Node(b)
	require.True(t, ok)
	assert.Equal(t, "b", n.Name)
	assert.Equal(t, b, n.ID)

	assert.True(t, g.RemoveNode(a))
	assert.False(t, g.RemoveNode(a))

	_, ok = g.Node(a)
	assert.False(t, ok, "entfernter Knoten darf nicht aufloesbar sein")

	c := g.AddNode(&Node{Name: "c"})
	assert.NotEqual(t, a, c, "Handles werden nicht wiederverwendet")

	_, ok = g.Node(NodeID(-1))
	assert.False(t, ok)
	_, ok = g.Node(NodeID(99))
	assert.False(t, ok)
}

func TestGraphScopes(t *testing.T) {
	g := New()
	s1 := g.NewScope("first")
	s2 := g.NewScope("second")
	assert.NotEqual(t, s1.ID(), s2.ID())

	s1.Append(g.AddNode(&Node{Name: "x"}))
	c := g.CloneScope(s1, "copy")
	assert.NotEqual(t, s1.ID(), c.ID())
	assert.Equal(t, "copy", c.Name())
	assert.Equal(t, s1.Nodes(), c.Nodes())

	got, ok := g.Scope(c.ID())
	require.True(t, ok)
	assert.Same(t, c, got)

	scopes := g.Scopes()
	require.Len(t, scopes, 3)
	assert.Equal(t, []string{"first", "second", "copy"}, []string{scopes[0].Name(), scopes[1].Name(), scopes[2].Name()})

	// Scope-IDs sind prozessweit eindeutig
	other := New().NewScope("first")
	assert.NotEqual(t, s1.ID(), other.ID())
}

func TestGraphTensors(t *testing.T) {
	g := New()
	g.SetTensor("b", ml.FromSlice([]float32{1}))
	g.SetTensor("a", ml.FromSlice([]int32{2}))

	x, ok := g.Tensor("a")
	require.True(t, ok)
	assert.Equal(t, "a", x.Name())
	assert.Equal(t, []string{"a", "b"}, g.TensorNames())

	_, ok = g.Tensor("c")
	assert.False(t, ok)
}

func TestConditionalScope(t *testing.T) {
	g := New()
	s := g.NewScope("loop")

	_, err := NewConditionalScope(g, s)
	assert.ErrorIs(t, err, ErrNotConditional, "leerer Scope")

	s.Append(g.AddNode(&Node{Name: "sort", Family: dispatch.FamilySort, Inputs: []string{"x"}}))
	_, err = NewConditionalScope(g, s)
	assert.ErrorIs(t, err, ErrNotConditional, "letzter Knoten ist kein Praedikat")

	cond := g.AddNode(&Node{Name: "cond", Predicate: Repeat(2)})
	s.Append(cond)
	b, err := NewConditionalScope(g, s)
	require.NoError(t, err)
	assert.Equal(t, 1, b.ConditionIndex)
	assert.Same(t, s, b.Scope())

	g.RemoveNode(cond)
	_, err = NewConditionalScope(g, s)
	assert.True(t, errors.Is(err, ErrStaleNode), "entfernter Bedingungsknoten: %v", err)
}
