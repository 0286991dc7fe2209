// table.go - Dispatch-Tabelle
//
// Die Tabelle bildet (Familie, Element-Typ) auf genau einen Kernel ab.
// Die Registrierungsreihenfolge bleibt fuer die Introspektion erhalten.
// Nach dem Aufbau ist die Tabelle nur noch lesend in Benutzung und kann
// ohne Synchronisation von mehreren Goroutinen verwendet werden.
package dispatch

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ollama/opexec/ml"
)

// Kernel runs one operation on operands whose element type matches the
// kernel's table entry.
type Kernel func(req *Request) (Result, error)

// Key identifies a table entry.
type Key struct {
	Family Family
	DType  ml.DType
}

func (k Key) String() string {
	return fmt.Sprintf("%s[%s]", k.Family, k.DType)
}

// Table maps (family, element type) to kernels.
type Table struct {
	kernels *orderedmap.OrderedMap[Key, Kernel]
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{kernels: orderedmap.New[Key, Kernel]()}
}

// Register adds a kernel. Registering the same key twice fails so that no
// combination can resolve ambiguously.
func (t *Table) Register(family Family, dtype ml.DType, kernel Kernel) error {
	key := Key{family, dtype}
	switch {
	case !family.Valid():
		return fmt.Errorf("%w: %d", ErrUnknownFamily, int(family))
	case kernel == nil:
		return fmt.Errorf("nil kernel for %s", key)
	}

	if _, ok := t.kernels.Get(key); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKernel, key)
	}

	t.kernels.Set(key, kernel)
	return nil
}

func (t *Table) mustRegister(family Family, dtype ml.DType, kernel Kernel) {
	if err := t.Register(family, dtype, kernel); err != nil {
		panic(err)
	}
}

// Lookup returns the kernel registered for family and dtype.
func (t *Table) Lookup(family Family, dtype ml.DType) (Kernel, bool) {
	return t.kernels.Get(Key{family, dtype})
}

// Len returns the number of registered kernels.
func (t *Table) Len() int {
	return t.kernels.Len()
}

// Keys returns all registered keys in registration order.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, t.kernels.Len())
	for pair := t.kernels.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Supported returns the element types registered for family in
// registration order.
func (t *Table) Supported(family Family) []ml.DType {
	var dtypes []ml.DType
	for pair := t.kernels.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key.Family == family {
			dtypes = append(dtypes, pair.Key.DType)
		}
	}
	return dtypes
}

// Wrap returns a new table with every kernel replaced by wrap(key, kernel).
func (t *Table) Wrap(wrap func(Key, Kernel) Kernel) *Table {
	w := NewTable()
	for pair := t.kernels.Oldest(); pair != nil; pair = pair.Next() {
		w.kernels.Set(pair.Key, wrap(pair.Key, pair.Value))
	}
	return w
}
