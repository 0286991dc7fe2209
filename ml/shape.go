// shape.go - Shape-Deskriptoren
// Dieses Modul beschreibt Dimensionen, Speicherreihenfolge (C/Fortran)
// und die daraus abgeleiteten Strides eines Tensors.
package ml

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Order is the memory layout of a tensor.
type Order byte

const (
	// OrderC is row-major: the last axis varies fastest.
	OrderC Order = 'c'
	// OrderF is column-major: the first axis varies fastest.
	OrderF Order = 'f'
)

func (o Order) String() string {
	if o == 0 {
		return "c"
	}
	return string(rune(o))
}

// Shape describes the dimensions and layout of a dense tensor.
type Shape struct {
	Dims  []int
	Order Order
}

// NewShape returns a row-major shape with the given dimensions.
func NewShape(dims ...int) Shape {
	return Shape{Dims: slices.Clone(dims), Order: OrderC}
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s.Dims)
}

// Len returns the number of elements. A rank 0 shape holds one element.
func (s Shape) Len() int {
	n := 1
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// IsFortran reports whether the shape is column-major.
func (s Shape) IsFortran() bool {
	return s.Order == OrderF
}

// Strides returns the element strides for a contiguous buffer in s.Order.
func (s Shape) Strides() []int {
	strides := make([]int, len(s.Dims))
	stride := 1
	if s.IsFortran() {
		for i := range s.Dims {
			strides[i] = stride
			stride *= s.Dims[i]
		}
		return strides
	}

	for i := len(s.Dims) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= s.Dims[i]
	}
	return strides
}

// Validate checks that all dimensions are non-negative and the order is known.
func (s Shape) Validate() error {
	switch s.Order {
	case 0, OrderC, OrderF:
	default:
		return fmt.Errorf("invalid order %q", rune(s.Order))
	}

	for i, d := range s.Dims {
		if d < 0 {
			return fmt.Errorf("dimension %d is negative (%d)", i, d)
		}
	}
	return nil
}

// Equal reports whether s and o have the same dimensions and layout.
func (s Shape) Equal(o Shape) bool {
	return s.IsFortran() == o.IsFortran() && slices.Equal(s.Dims, o.Dims)
}

// Clone returns a deep copy of s.
func (s Shape) Clone() Shape {
	return Shape{Dims: slices.Clone(s.Dims), Order: s.Order}
}

func (s Shape) String() string {
	parts := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ", ") + "]" + s.Order.String()
}

// NormalizeAxes resolves negative axes against rank and checks that every
// axis is in range and listed once.
func NormalizeAxes(axes []int, rank int) ([]int, error) {
	if len(axes) == 0 {
		return nil, errors.New("no axes given")
	}

	out := make([]int, len(axes))
	seen := make([]bool, rank)
	for i, a := range axes {
		if a < 0 {
			a += rank
		}
		if a < 0 || a >= rank {
			return nil, fmt.Errorf("axis %d out of range for rank %d", axes[i], rank)
		}
		if seen[a] {
			return nil, fmt.Errorf("axis %d listed more than once", a)
		}
		seen[a] = true
		out[i] = a
	}
	return out, nil
}
