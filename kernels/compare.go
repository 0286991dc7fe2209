// compare.go - Vergleichsfunktionen pro Element-Typ
package kernels

import (
	"cmp"

	"github.com/x448/float16"

	"github.com/ollama/opexec/ml"
)

// CompareFunc returns a negative number when a < b, zero when a == b and a
// positive number when a > b.
type CompareFunc[T any] func(a, b T) int

// CompareOrdered compares values of Go's ordered types. NaN sorts before
// every other value.
func CompareOrdered[T cmp.Ordered](a, b T) int {
	return cmp.Compare(a, b)
}

// CompareBool orders false before true.
func CompareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// CompareFloat16 compares half precision values numerically rather than by
// their bit patterns.
func CompareFloat16(a, b float16.Float16) int {
	return cmp.Compare(a.Float32(), b.Float32())
}

// CompareBFloat16 compares bfloat16 values numerically.
func CompareBFloat16(a, b ml.BFloat16) int {
	return cmp.Compare(a.Float32(), b.Float32())
}

func direction[T any](compare CompareFunc[T], descending bool) CompareFunc[T] {
	if descending {
		return func(a, b T) int { return compare(b, a) }
	}
	return compare
}
