// dump.go - Dump-Funktionen fuer Tensor-Debugging und Visualisierung
// Dieses Modul stellt Hilfsfunktionen zum Ausgeben von Tensor-Inhalten bereit.
package ml

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

func mul(s ...int) int {
	p := 1
	for _, v := range s {
		p *= v
	}

	return p
}

// DumpOptions configures tensor dump output format.
type DumpOptions func(*dumpOptions)

// DumpWithPrecision sets the number of decimal places to print for float types.
func DumpWithPrecision(n int) DumpOptions {
	return func(opts *dumpOptions) {
		opts.Precision = n
	}
}

// DumpWithThreshold sets the threshold for printing the entire tensor. If the number of elements
// is less than or equal to this value, the entire tensor will be printed. Otherwise, only the
// beginning and end of each dimension will be printed.
func DumpWithThreshold(n int) DumpOptions {
	return func(opts *dumpOptions) {
		opts.Threshold = n
	}
}

// DumpWithEdgeItems sets the number of elements to print at the beginning and end of each dimension.
func DumpWithEdgeItems(n int) DumpOptions {
	return func(opts *dumpOptions) {
		opts.EdgeItems = n
	}
}

type dumpOptions struct {
	Precision, Threshold, EdgeItems int
}

// Dump converts a tensor to a human-readable string representation.
func Dump(t *Tensor, optsFuncs ...DumpOptions) string {
	opts := dumpOptions{Precision: 4, Threshold: 1000, EdgeItems: 3}
	for _, optsFunc := range optsFuncs {
		optsFunc(&opts)
	}

	if t.Len() <= opts.Threshold {
		opts.EdgeItems = math.MaxInt
	}

	var format func(float64) string
	switch {
	case t.DType() == DTypeBool:
		format = func(f float64) string { return strconv.FormatBool(f != 0) }
	case t.DType().IsFloat(), t.DType() == DTypeComplex64:
		format = func(f float64) string { return strconv.FormatFloat(f, 'f', opts.Precision, 64) }
	case t.DType().IsInteger():
		format = func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	default:
		return "<unsupported>"
	}

	return dump(rowMajor(t), slices.Clone(t.Dims()), opts.EdgeItems, format)
}

// rowMajor returns the elements of t in row-major order regardless of its
// memory layout.
func rowMajor(t *Tensor) []float64 {
	s := t.Floats()
	if !t.Shape().IsFortran() || t.Rank() < 2 {
		return s
	}

	dims := t.Dims()
	strides := t.Shape().Strides()
	out := make([]float64, len(s))
	idx := make([]int, len(dims))
	for i := range out {
		off := 0
		for j := range idx {
			off += idx[j] * strides[j]
		}
		out[i] = s[off]

		for j := len(idx) - 1; j >= 0; j-- {
			idx[j]++
			if idx[j] < dims[j] {
				break
			}
			idx[j] = 0
		}
	}
	return out
}

func dump(s []float64, shape []int, items int, fn func(float64) string) string {
	if len(shape) == 0 {
		if len(s) == 0 {
			return "[]"
		}
		return fn(s[0])
	}

	var sb strings.Builder
	var f func([]int, int)
	f = func(dims []int, stride int) {
		prefix := strings.Repeat(" ", len(shape)-len(dims)+1)
		sb.WriteString("[")
		defer func() { sb.WriteString("]") }()
		for i := 0; i < dims[0]; i++ {
			if i >= items && i < dims[0]-items {
				sb.WriteString("..., ")
				// skip to next printable element
				skip := dims[0] - 2*items
				if len(dims) > 1 {
					stride += mul(append(dims[1:], skip)...)
					fmt.Fprint(&sb, strings.Repeat("\n", len(dims)-1), prefix)
				}
				i += skip - 1
			} else if len(dims) > 1 {
				f(dims[1:], stride)
				stride += mul(dims[1:]...)
				if i < dims[0]-1 {
					fmt.Fprint(&sb, ",", strings.Repeat("\n", len(dims)-1), prefix)
				}
			} else {
				text := fn(s[stride+i])
				if len(text) > 0 && text[0] != '-' {
					sb.WriteString(" ")
				}

				sb.WriteString(text)
				if i < dims[0]-1 {
					sb.WriteString(", ")
				}
			}
		}
	}
	f(shape, 0)

	return sb.String()
}
