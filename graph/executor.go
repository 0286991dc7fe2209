// executor.go - Replay von Scopes ueber den Dispatcher
//
// Ablauf pro Knoten:
// 1. Kontext pruefen (Abbruch zwischen Knoten)
// 2. Handle aufloesen (ErrStaleNode)
// 3. Praedikat auswerten oder Request bauen und dispatchen
// 4. Skalare Ergebnisse als Tensoren ablegen
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ollama/opexec/dispatch"
	"github.com/ollama/opexec/envconfig"
	"github.com/ollama/opexec/kernels"
	"github.com/ollama/opexec/logutil"
	"github.com/ollama/opexec/ml"
)

// Executor replays blocks of a graph. An Executor must not run blocks of the
// same graph concurrently.
type Executor struct {
	graph         *Graph
	invoker       *dispatch.Invoker
	logger        *slog.Logger
	maxIterations uint64
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMaxIterations bounds the replays of a conditional scope. Zero keeps
// the OPEXEC_MAX_LOOP_ITERATIONS default.
func WithMaxIterations(n uint64) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// NewExecutor returns an executor for g. A nil invoker uses the built-in
// kernels.
func NewExecutor(g *Graph, invoker *dispatch.Invoker, opts ...ExecutorOption) *Executor {
	if invoker == nil {
		invoker = dispatch.NewInvoker(nil)
	}

	e := &Executor{
		graph:         g,
		invoker:       invoker,
		logger:        slog.Default(),
		maxIterations: envconfig.MaxLoopIterations(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report summarizes one Run.
type Report struct {
	RunID      string
	ScopeID    int
	Iterations int
	Nodes      int
	Duration   time.Duration
}

// Run executes b. Errors from nodes are wrapped with the scope and node they
// came from; dispatch errors stay reachable through errors.Is and errors.As.
func (e *Executor) Run(ctx context.Context, b Block) (r Report, err error) {
	s := b.Scope()
	r = Report{RunID: uuid.NewString(), ScopeID: s.ID()}
	logger := e.logger.With("run", r.RunID, "scope", s.ID(), "name", s.Name())

	start := time.Now()
	defer func() { r.Duration = time.Since(start) }()

	switch b := b.(type) {
	case UnconditionalScope:
		r.Iterations = 1
		n, _, err := e.runNodes(ctx, logger, s.Nodes(), 1)
		r.Nodes += n
		if err != nil {
			return r, err
		}

	case ConditionalScope:
		if err := b.check(e.graph); err != nil {
			return r, err
		}

		for {
			if uint64(r.Iterations) >= e.maxIterations {
				return r, fmt.Errorf("%w: scope %d (%s) after %d iterations", ErrMaxIterations, s.ID(), s.Name(), r.Iterations)
			}
			r.Iterations++

			n, cond, err := e.runNodes(ctx, logger, s.Nodes()[:b.ConditionIndex+1], r.Iterations)
			r.Nodes += n
			if err != nil {
				return r, err
			}

			logutil.Log(ctx, logger, logutil.LevelTrace, "condition evaluated", "iteration", r.Iterations, "result", cond)
			if !cond {
				break
			}
		}

	default:
		return r, fmt.Errorf("unknown block type %T", b)
	}

	logger.Debug("scope finished", "iterations", r.Iterations, "nodes", r.Nodes, "duration", time.Since(start).Round(time.Microsecond))
	return r, nil
}

// runNodes runs ids in order and returns how many ran and the result of the
// last boolean node.
func (e *Executor) runNodes(ctx context.Context, logger *slog.Logger, ids []NodeID, iteration int) (int, bool, error) {
	var cond bool
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return i, false, err
		}

		n, ok := e.graph.Node(id)
		if !ok {
			return i, false, fmt.Errorf("%w: handle %d at position %d", ErrStaleNode, id, i)
		}

		if n.Boolean() {
			v, err := n.Predicate(e.graph, iteration)
			if err != nil {
				return i, false, fmt.Errorf("node %s: %w", n, err)
			}
			if len(n.Outputs) > 0 {
				e.graph.SetTensor(n.Outputs[0], ml.Scalar(v))
			}
			cond = v
			continue
		}

		if err := e.dispatch(ctx, logger, n); err != nil {
			return i, false, fmt.Errorf("node %s: %w", n, err)
		}
	}
	return len(ids), cond, nil
}

func (e *Executor) dispatch(ctx context.Context, logger *slog.Logger, n *Node) error {
	req, err := e.request(n)
	if err != nil {
		return err
	}

	res, err := e.invoker.Dispatch(req)
	if err != nil {
		return err
	}

	if n.Family == dispatch.FamilyEncodeBitmap && len(n.Outputs) > 1 {
		e.graph.SetTensor(n.Outputs[1], ml.Scalar(int64(res.Count)))
	}

	logutil.Log(ctx, logger, logutil.LevelTrace, "node finished", "node", n.String(), "count", res.Count)
	return nil
}

// request maps the tensors and attributes of n onto a dispatch request.
func (e *Executor) request(n *Node) (*dispatch.Request, error) {
	req := &dispatch.Request{
		Family:     n.Family,
		Shape:      n.Attrs.Shape,
		Dims:       n.Attrs.Dims,
		Descending: n.Attrs.Descending,
		Mode:       n.Attrs.Mode,
		Threshold:  n.Attrs.Threshold,
		Scheme:     n.Attrs.Scheme,
	}
	if req.Scheme == 0 {
		req.Scheme = kernels.SchemeExact
	}

	var err error
	if req.Input, err = e.operand(n.Inputs, 0); err != nil {
		return nil, err
	}

	switch n.Family {
	case dispatch.FamilySortCOO:
		req.Values, err = e.operand(n.Inputs, 1)
	case dispatch.FamilyRavel, dispatch.FamilyUnravel, dispatch.FamilyEncodeBitmap, dispatch.FamilyDecodeBitmap:
		req.Output, err = e.operand(n.Outputs, 0)
	}
	if err != nil {
		return nil, err
	}

	return req, nil
}

func (e *Executor) operand(names []string, i int) (*ml.Tensor, error) {
	if i >= len(names) {
		return nil, fmt.Errorf("%w: operand %d not named", dispatch.ErrMalformedOperand, i)
	}

	t, ok := e.graph.Tensor(names[i])
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTensor, names[i])
	}
	return t, nil
}
