// invoker.go - TypeDispatchInvoker
//
// Dispatch-Ablauf:
// 1. Element-Typ aus dem massgeblichen Operanden bestimmen
// 2. Kernel in der Tabelle nachschlagen (ErrUnsupportedType)
// 3. Operanden pruefen (ErrMalformedOperand)
// 4. Kernel aufrufen; Kernel-Fehler werden unveraendert zurueckgegeben
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ollama/opexec/logutil"
)

// Invoker routes requests to the kernel registered for their family and
// element type. It holds no per-call state and is safe for concurrent use
// on disjoint operands.
type Invoker struct {
	table  *Table
	logger *slog.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoker) {
		i.logger = logger
	}
}

// NewInvoker returns an invoker over table, or over Builtin() if table is
// nil.
func NewInvoker(table *Table, opts ...Option) *Invoker {
	if table == nil {
		table = Builtin()
	}

	i := &Invoker{table: table, logger: slog.Default()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Table returns the dispatch table of i.
func (i *Invoker) Table() *Table {
	return i.table
}

// Dispatch selects and runs the kernel for req. Unsupported element types
// and malformed operands are reported as *Error before any kernel runs;
// errors returned by the kernel are passed through unchanged.
func (i *Invoker) Dispatch(req *Request) (Result, error) {
	ctx := context.Background()
	if req == nil {
		return Result{}, fmt.Errorf("%w: nil request", ErrMalformedOperand)
	}
	if !req.Family.Valid() {
		return Result{}, &Error{Family: req.Family, Err: ErrUnknownFamily}
	}

	dtype, err := req.ElementType()
	if err != nil {
		return Result{}, &Error{Family: req.Family, DType: dtype, Err: fmt.Errorf("%w: %w", ErrMalformedOperand, err)}
	}

	kernel, ok := i.table.Lookup(req.Family, dtype)
	if !ok {
		i.logger.Debug("no kernel for element type", "family", req.Family, "dtype", dtype, "supported", i.table.Supported(req.Family))
		return Result{}, &Error{Family: req.Family, DType: dtype, Err: ErrUnsupportedType}
	}

	if err := validate(req); err != nil {
		i.logger.Debug("rejecting operands", "family", req.Family, "dtype", dtype, "error", err)
		return Result{}, &Error{Family: req.Family, DType: dtype, Err: fmt.Errorf("%w: %w", ErrMalformedOperand, err)}
	}

	logutil.Log(ctx, i.logger, logutil.LevelTrace, "dispatch", "family", req.Family, "dtype", dtype)
	return kernel(req)
}
