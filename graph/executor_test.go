package graph

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollama/opexec/dispatch"
	"github.com/ollama/opexec/kernels"
	"github.com/ollama/opexec/ml"
)

// countingInvoker counts every kernel invocation.
func countingInvoker() (*dispatch.Invoker, *atomic.Int64) {
	var n atomic.Int64
	table := dispatch.Builtin().Wrap(func(_ dispatch.Key, k dispatch.Kernel) dispatch.Kernel {
		return func(req *dispatch.Request) (dispatch.Result, error) {
			n.Add(1)
			return k(req)
		}
	})
	return dispatch.NewInvoker(table), &n
}

func TestExecutorUnconditional(t *testing.T) {
	g := New()
	g.SetTensor("x", ml.FromSlice([]float32{3, 1, 2, 6, 4, 5}, 2, 3))

	s := g.NewScope("rows")
	s.Append(g.AddNode(&Node{
		Name:   "sort_rows",
		Family: dispatch.FamilySortTAD,
		Inputs: []string{"x"},
		Attrs:  Attrs{Dims: []int{1}, Descending: true},
	}))

	r, err := NewExecutor(g, nil).Run(context.Background(), UnconditionalScope{Body: s})
	require.NoError(t, err)

	x, _ := g.Tensor("x")
	assert.Equal(t, []float64{3, 2, 1, 6, 5, 4}, x.Floats())
	assert.Equal(t, 1, r.Iterations)
	assert.Equal(t, 1, r.Nodes)
	assert.Equal(t, s.ID(), r.ScopeID)

	_, err = uuid.Parse(r.RunID)
	assert.NoError(t, err)
}

func TestExecutorLoop(t *testing.T) {
	g := New()
	g.SetTensor("x", ml.FromSlice([]int64{2, 1}))

	s := g.NewScope("loop_body")
	s.Append(g.AddNode(&Node{Name: "a", Family: dispatch.FamilySort, Inputs: []string{"x"}}))
	s.Append(g.AddNode(&Node{Name: "b", Family: dispatch.FamilySort, Inputs: []string{"x"}, Attrs: Attrs{Descending: true}}))
	s.Append(g.AddNode(&Node{Name: "c", Outputs: []string{"again"}, Predicate: Repeat(3)}))

	b, err := NewConditionalScope(g, s)
	require.NoError(t, err)

	inv, calls := countingInvoker()
	r, err := NewExecutor(g, inv).Run(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Iterations)
	assert.Equal(t, 9, r.Nodes)
	assert.EqualValues(t, 6, calls.Load(), "zwei Kernel pro Iteration")

	again, ok := g.Tensor("again")
	require.True(t, ok)
	v, err := again.Bool()
	require.NoError(t, err)
	assert.False(t, v, "letzte Auswertung beendet die Schleife")
	assert.Equal(t, 0, again.Rank())

	x, _ := g.Tensor("x")
	assert.Equal(t, []float64{2, 1}, x.Floats())

	// der Scope kann erneut abgespielt werden
	r, err = NewExecutor(g, inv).Run(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Iterations)
	assert.EqualValues(t, 12, calls.Load())
}

func TestExecutorMaxIterations(t *testing.T) {
	g := New()
	s := g.NewScope("forever")
	s.Append(g.AddNode(&Node{Name: "always", Predicate: func(*Graph, int) (bool, error) { return true, nil }}))

	b, err := NewConditionalScope(g, s)
	require.NoError(t, err)

	r, err := NewExecutor(g, nil, WithMaxIterations(5)).Run(context.Background(), b)
	require.ErrorIs(t, err, ErrMaxIterations)
	assert.Equal(t, 5, r.Iterations)
}

func TestExecutorMaxIterationsEnvZero(t *testing.T) {
	t.Setenv("OPEXEC_MAX_LOOP_ITERATIONS", "0")

	g := New()
	s := g.NewScope("twice")
	s.Append(g.AddNode(&Node{Name: "c", Predicate: Repeat(2)}))

	b, err := NewConditionalScope(g, s)
	require.NoError(t, err)

	r, err := NewExecutor(g, nil).Run(context.Background(), b)
	require.NoError(t, err, "0 bedeutet Default-Grenze, nicht keine Iteration")
	assert.Equal(t, 2, r.Iterations)
}

func TestExecutorTensorPredicate(t *testing.T) {
	g := New()
	g.SetTensor("go", ml.Scalar(true))

	s := g.NewScope("while")
	s.Append(g.AddNode(&Node{
		Name: "countdown",
		Predicate: func(g *Graph, iteration int) (bool, error) {
			if iteration == 4 {
				g.SetTensor("go", ml.Scalar(false))
			}
			return true, nil
		},
	}))
	s.Append(g.AddNode(&Node{Name: "check", Predicate: TensorTrue("go")}))

	b, err := NewConditionalScope(g, s)
	require.NoError(t, err)

	r, err := NewExecutor(g, nil).Run(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Iterations)
}

func TestExecutorEncodeCount(t *testing.T) {
	g := New()
	g.SetTensor("grad", ml.FromSlice([]float32{0.5, -0.01, -2, 0}))
	buf, err := ml.NewTensor(ml.DTypeInt32, ml.NewShape(kernels.BitmapWords(4, ml.DTypeFloat32, kernels.SchemeExact)))
	require.NoError(t, err)
	g.SetTensor("buf", buf)
	out, err := ml.NewTensor(ml.DTypeFloat32, ml.NewShape(4))
	require.NoError(t, err)
	g.SetTensor("out", out)

	s := g.NewScope("compress")
	s.Append(g.AddNode(&Node{
		Name:    "encode",
		Family:  dispatch.FamilyEncodeBitmap,
		Inputs:  []string{"grad"},
		Outputs: []string{"buf", "k"},
		Attrs:   Attrs{Threshold: 0.1},
	}))
	s.Append(g.AddNode(&Node{
		Name:    "decode",
		Family:  dispatch.FamilyDecodeBitmap,
		Inputs:  []string{"buf"},
		Outputs: []string{"out"},
	}))

	_, err = NewExecutor(g, nil).Run(context.Background(), UnconditionalScope{Body: s})
	require.NoError(t, err)

	k, ok := g.Tensor("k")
	require.True(t, ok)
	assert.Equal(t, ml.DTypeInt64, k.DType())
	assert.Equal(t, []float64{2}, k.Floats())

	assert.Equal(t, []float64{0.5, 0, -2, 0}, out.Floats())
}

func TestExecutorErrors(t *testing.T) {
	t.Run("unsupported type", func(t *testing.T) {
		g := New()
		c, err := ml.NewTensor(ml.DTypeComplex64, ml.NewShape(2))
		require.NoError(t, err)
		g.SetTensor("c", c)

		s := g.NewScope("bad")
		s.Append(g.AddNode(&Node{Name: "sort_complex", Family: dispatch.FamilySort, Inputs: []string{"c"}}))

		_, err = NewExecutor(g, nil).Run(context.Background(), UnconditionalScope{Body: s})
		require.ErrorIs(t, err, dispatch.ErrUnsupportedType)
		assert.Contains(t, err.Error(), "sort_complex")

		var derr *dispatch.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, ml.DTypeComplex64, derr.DType)
	})

	t.Run("unknown tensor", func(t *testing.T) {
		g := New()
		s := g.NewScope("bad")
		s.Append(g.AddNode(&Node{Name: "sort", Family: dispatch.FamilySort, Inputs: []string{"missing"}}))

		_, err := NewExecutor(g, nil).Run(context.Background(), UnconditionalScope{Body: s})
		require.ErrorIs(t, err, ErrUnknownTensor)
	})

	t.Run("stale node", func(t *testing.T) {
		g := New()
		g.SetTensor("x", ml.FromSlice([]int8{1}))
		s := g.NewScope("stale")
		id := g.AddNode(&Node{Name: "sort", Family: dispatch.FamilySort, Inputs: []string{"x"}})
		s.Append(id)
		g.RemoveNode(id)

		inv, calls := countingInvoker()
		_, err := NewExecutor(g, inv).Run(context.Background(), UnconditionalScope{Body: s})
		require.ErrorIs(t, err, ErrStaleNode)
		assert.Zero(t, calls.Load())
	})

	t.Run("condition moved", func(t *testing.T) {
		g := New()
		g.SetTensor("x", ml.FromSlice([]int8{1}))
		s := g.NewScope("loop")
		s.Append(g.AddNode(&Node{Name: "cond", Predicate: Repeat(2)}))
		b, err := NewConditionalScope(g, s)
		require.NoError(t, err)

		s.Append(g.AddNode(&Node{Name: "sort", Family: dispatch.FamilySort, Inputs: []string{"x"}}))
		_, err = NewExecutor(g, nil).Run(context.Background(), b)
		require.ErrorIs(t, err, ErrNotConditional)
	})

	t.Run("predicate error", func(t *testing.T) {
		g := New()
		boom := errors.New("boom")
		s := g.NewScope("loop")
		s.Append(g.AddNode(&Node{Name: "cond", Predicate: func(*Graph, int) (bool, error) { return false, boom }}))
		b, err := NewConditionalScope(g, s)
		require.NoError(t, err)

		_, err = NewExecutor(g, nil).Run(context.Background(), b)
		require.ErrorIs(t, err, boom)
	})
}

func TestExecutorCancel(t *testing.T) {
	g := New()
	g.SetTensor("x", ml.FromSlice([]int8{2, 1}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := g.NewScope("loop")
	s.Append(g.AddNode(&Node{Name: "sort", Family: dispatch.FamilySort, Inputs: []string{"x"}}))
	s.Append(g.AddNode(&Node{
		Name: "cond",
		Predicate: func(_ *Graph, iteration int) (bool, error) {
			if iteration == 2 {
				cancel()
			}
			return true, nil
		},
	}))

	b, err := NewConditionalScope(g, s)
	require.NoError(t, err)

	inv, calls := countingInvoker()
	r, err := NewExecutor(g, inv).Run(ctx, b)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, r.Iterations)
	assert.EqualValues(t, 2, calls.Load(), "nach dem Abbruch laeuft kein Kernel mehr")
}
