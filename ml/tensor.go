// tensor.go - Typ-geloeschter Tensor
// Dieses Modul enthaelt:
// - Element: Constraint ueber alle Speichertypen
// - Tensor: DType + Shape + typisierter Slice
// - Konstruktoren (NewTensor, FromSlice, FromFloat64s) und Zugriffe
package ml

import (
	"fmt"
	"slices"

	"github.com/x448/float16"
)

// Element is the set of Go storage types backing the DTypes.
type Element interface {
	bool | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 |
		float16.Float16 | BFloat16 | float32 | float64 | complex64
}

// DTypeOf returns the DType stored as T.
func DTypeOf[T Element]() DType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return DTypeBool
	case int8:
		return DTypeInt8
	case uint8:
		return DTypeUint8
	case int16:
		return DTypeInt16
	case uint16:
		return DTypeUint16
	case int32:
		return DTypeInt32
	case uint32:
		return DTypeUint32
	case int64:
		return DTypeInt64
	case uint64:
		return DTypeUint64
	case float16.Float16:
		return DTypeFloat16
	case BFloat16:
		return DTypeBfloat16
	case float32:
		return DTypeFloat32
	case float64:
		return DTypeFloat64
	case complex64:
		return DTypeComplex64
	default:
		return DTypeOther
	}
}

// Tensor is a dense, type-erased buffer together with its shape. The data
// field always holds a []T whose element type matches dtype.
type Tensor struct {
	name  string
	dtype DType
	shape Shape
	data  any
}

// NewTensor allocates a zero-filled tensor.
func NewTensor(dtype DType, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	n := shape.Len()
	var data any
	switch dtype {
	case DTypeBool:
		data = make([]bool, n)
	case DTypeInt8:
		data = make([]int8, n)
	case DTypeUint8:
		data = make([]uint8, n)
	case DTypeInt16:
		data = make([]int16, n)
	case DTypeUint16:
		data = make([]uint16, n)
	case DTypeInt32:
		data = make([]int32, n)
	case DTypeUint32:
		data = make([]uint32, n)
	case DTypeInt64:
		data = make([]int64, n)
	case DTypeUint64:
		data = make([]uint64, n)
	case DTypeFloat16:
		data = make([]float16.Float16, n)
	case DTypeBfloat16:
		data = make([]BFloat16, n)
	case DTypeFloat32:
		data = make([]float32, n)
	case DTypeFloat64:
		data = make([]float64, n)
	case DTypeComplex64:
		data = make([]complex64, n)
	default:
		return nil, fmt.Errorf("cannot allocate tensor of dtype %s", dtype)
	}

	return &Tensor{dtype: dtype, shape: shape.Clone(), data: data}, nil
}

// FromSlice wraps data as a row-major tensor without copying. It panics if
// the number of elements does not match dims.
func FromSlice[T Element](data []T, dims ...int) *Tensor {
	if len(dims) == 0 {
		dims = []int{len(data)}
	}

	shape := NewShape(dims...)
	if shape.Len() != len(data) {
		panic(fmt.Sprintf("ml: %d elements do not fit shape %v", len(data), dims))
	}

	return &Tensor{dtype: DTypeOf[T](), shape: shape, data: data}
}

// Scalar returns a rank 0 tensor holding v.
func Scalar[T Element](v T) *Tensor {
	return &Tensor{dtype: DTypeOf[T](), shape: NewShape(), data: []T{v}}
}

// FromFloat64s converts values to dtype and wraps them in a tensor of the
// given shape.
func FromFloat64s(dtype DType, values []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.Len() != len(values) {
		return nil, fmt.Errorf("%d values do not fit shape %v", len(values), shape)
	}

	var data any
	switch dtype {
	case DTypeBool:
		data = convert(values, func(v float64) bool { return v != 0 })
	case DTypeInt8:
		data = convert(values, func(v float64) int8 { return int8(v) })
	case DTypeUint8:
		data = convert(values, func(v float64) uint8 { return uint8(v) })
	case DTypeInt16:
		data = convert(values, func(v float64) int16 { return int16(v) })
	case DTypeUint16:
		data = convert(values, func(v float64) uint16 { return uint16(v) })
	case DTypeInt32:
		data = convert(values, func(v float64) int32 { return int32(v) })
	case DTypeUint32:
		data = convert(values, func(v float64) uint32 { return uint32(v) })
	case DTypeInt64:
		data = convert(values, func(v float64) int64 { return int64(v) })
	case DTypeUint64:
		data = convert(values, func(v float64) uint64 { return uint64(v) })
	case DTypeFloat16:
		data = convert(values, func(v float64) float16.Float16 { return float16.Fromfloat32(float32(v)) })
	case DTypeBfloat16:
		data = BFloat16sFromFloat32(convert(values, func(v float64) float32 { return float32(v) }))
	case DTypeFloat32:
		data = convert(values, func(v float64) float32 { return float32(v) })
	case DTypeFloat64:
		data = slices.Clone(values)
	case DTypeComplex64:
		data = convert(values, func(v float64) complex64 { return complex(float32(v), 0) })
	default:
		return nil, fmt.Errorf("cannot convert values to dtype %s", dtype)
	}

	return &Tensor{dtype: dtype, shape: shape.Clone(), data: data}, nil
}

func convert[S, D any](s []S, fn func(S) D) []D {
	d := make([]D, len(s))
	for i := range s {
		d[i] = fn(s[i])
	}
	return d
}

// Data returns the typed backing slice of t. It fails if T is not the
// storage type of t's dtype.
func Data[T Element](t *Tensor) ([]T, error) {
	s, ok := t.data.([]T)
	if !ok {
		return nil, fmt.Errorf("tensor %q holds %s, not %s", t.name, t.dtype, DTypeOf[T]())
	}
	return s, nil
}

// Name returns the tensor name, which may be empty.
func (t *Tensor) Name() string { return t.name }

// SetName sets the tensor name and returns t.
func (t *Tensor) SetName(name string) *Tensor {
	t.name = name
	return t
}

func (t *Tensor) DType() DType { return t.dtype }
func (t *Tensor) Shape() Shape { return t.shape }
func (t *Tensor) Dims() []int  { return t.shape.Dims }
func (t *Tensor) Rank() int    { return t.shape.Rank() }
func (t *Tensor) Len() int     { return t.shape.Len() }

// Data returns the backing slice as an untyped value.
func (t *Tensor) Data() any { return t.data }

// Reshape changes the logical shape without touching the data.
func (t *Tensor) Reshape(shape Shape) error {
	if err := shape.Validate(); err != nil {
		return err
	}
	if shape.Len() != t.Len() {
		return fmt.Errorf("cannot reshape %v to %v", t.shape, shape)
	}
	t.shape = shape.Clone()
	return nil
}

// Clone returns a deep copy of t.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{name: t.name, dtype: t.dtype, shape: t.shape.Clone()}
	switch s := t.data.(type) {
	case []bool:
		c.data = slices.Clone(s)
	case []int8:
		c.data = slices.Clone(s)
	case []uint8:
		c.data = slices.Clone(s)
	case []int16:
		c.data = slices.Clone(s)
	case []uint16:
		c.data = slices.Clone(s)
	case []int32:
		c.data = slices.Clone(s)
	case []uint32:
		c.data = slices.Clone(s)
	case []int64:
		c.data = slices.Clone(s)
	case []uint64:
		c.data = slices.Clone(s)
	case []float16.Float16:
		c.data = slices.Clone(s)
	case []BFloat16:
		c.data = slices.Clone(s)
	case []float32:
		c.data = slices.Clone(s)
	case []float64:
		c.data = slices.Clone(s)
	case []complex64:
		c.data = slices.Clone(s)
	}
	return c
}

// Floats returns the elements widened to float64. Complex values keep their
// real part.
func (t *Tensor) Floats() []float64 {
	switch s := t.data.(type) {
	case []bool:
		return convert(s, func(v bool) float64 {
			if v {
				return 1
			}
			return 0
		})
	case []int8:
		return convert(s, func(v int8) float64 { return float64(v) })
	case []uint8:
		return convert(s, func(v uint8) float64 { return float64(v) })
	case []int16:
		return convert(s, func(v int16) float64 { return float64(v) })
	case []uint16:
		return convert(s, func(v uint16) float64 { return float64(v) })
	case []int32:
		return convert(s, func(v int32) float64 { return float64(v) })
	case []uint32:
		return convert(s, func(v uint32) float64 { return float64(v) })
	case []int64:
		return convert(s, func(v int64) float64 { return float64(v) })
	case []uint64:
		return convert(s, func(v uint64) float64 { return float64(v) })
	case []float16.Float16:
		return convert(s, func(v float16.Float16) float64 { return float64(v.Float32()) })
	case []BFloat16:
		return convert(s, func(v BFloat16) float64 { return float64(v.Float32()) })
	case []float32:
		return convert(s, func(v float32) float64 { return float64(v) })
	case []float64:
		return slices.Clone(s)
	case []complex64:
		return convert(s, func(v complex64) float64 { return float64(real(v)) })
	default:
		return nil
	}
}

// Bool returns the first element of a bool tensor, typically a scalar
// produced by a predicate node.
func (t *Tensor) Bool() (bool, error) {
	s, err := Data[bool](t)
	if err != nil {
		return false, err
	}
	if len(s) == 0 {
		return false, fmt.Errorf("tensor %q is empty", t.name)
	}
	return s[0], nil
}

func (t *Tensor) String() string {
	name := t.name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("%s %s%v", name, t.dtype, t.shape)
}
