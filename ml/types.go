// types.go - Datentypen fuer Tensor-Elemente
// Dieses Modul definiert den geschlossenen Satz an Element-Typen (DType),
// die von den Kernels und dem Dispatcher unterstuetzt werden.
package ml

import (
	"fmt"
	"strings"
)

// DType represents the data type of tensor elements.
type DType int

const (
	DTypeOther DType = iota
	DTypeBool
	DTypeInt8
	DTypeUint8
	DTypeInt16
	DTypeUint16
	DTypeInt32
	DTypeUint32
	DTypeInt64
	DTypeUint64
	DTypeFloat16
	DTypeBfloat16
	DTypeFloat32
	DTypeFloat64
	DTypeComplex64
)

var dtypeNames = [...]string{
	DTypeOther:     "other",
	DTypeBool:      "bool",
	DTypeInt8:      "int8",
	DTypeUint8:     "uint8",
	DTypeInt16:     "int16",
	DTypeUint16:    "uint16",
	DTypeInt32:     "int32",
	DTypeUint32:    "uint32",
	DTypeInt64:     "int64",
	DTypeUint64:    "uint64",
	DTypeFloat16:   "float16",
	DTypeBfloat16:  "bfloat16",
	DTypeFloat32:   "float32",
	DTypeFloat64:   "float64",
	DTypeComplex64: "complex64",
}

func (d DType) String() string {
	if d < 0 || int(d) >= len(dtypeNames) {
		return fmt.Sprintf("DType(%d)", int(d))
	}
	return dtypeNames[d]
}

// ParseDType parses a dtype name as printed by String. A few common aliases
// ("f32", "half", "bf16", ...) are accepted as well.
func ParseDType(s string) (DType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "f16", "half":
		return DTypeFloat16, nil
	case "bf16":
		return DTypeBfloat16, nil
	case "f32", "float":
		return DTypeFloat32, nil
	case "f64", "double":
		return DTypeFloat64, nil
	case "i32", "int":
		return DTypeInt32, nil
	case "i64", "long":
		return DTypeInt64, nil
	}

	for i, name := range dtypeNames {
		if name == s {
			return DType(i), nil
		}
	}

	return DTypeOther, fmt.Errorf("unknown dtype %q", s)
}

// Size returns the element size in bytes, or 0 for DTypeOther.
func (d DType) Size() int {
	switch d {
	case DTypeBool, DTypeInt8, DTypeUint8:
		return 1
	case DTypeInt16, DTypeUint16, DTypeFloat16, DTypeBfloat16:
		return 2
	case DTypeInt32, DTypeUint32, DTypeFloat32:
		return 4
	case DTypeInt64, DTypeUint64, DTypeFloat64, DTypeComplex64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether d is one of the real floating point types.
func (d DType) IsFloat() bool {
	switch d {
	case DTypeFloat16, DTypeBfloat16, DTypeFloat32, DTypeFloat64:
		return true
	}
	return false
}

// IsInteger reports whether d is a signed or unsigned integer type.
func (d DType) IsInteger() bool {
	switch d {
	case DTypeInt8, DTypeUint8, DTypeInt16, DTypeUint16,
		DTypeInt32, DTypeUint32, DTypeInt64, DTypeUint64:
		return true
	}
	return false
}

// CommonTypes returns the element types every generic (non-float specific)
// operation family is specialized for.
func CommonTypes() []DType {
	return []DType{
		DTypeBool,
		DTypeInt8, DTypeUint8,
		DTypeInt16, DTypeUint16,
		DTypeInt32, DTypeUint32,
		DTypeInt64, DTypeUint64,
		DTypeFloat16, DTypeBfloat16,
		DTypeFloat32, DTypeFloat64,
	}
}

// FloatTypes returns the real floating point element types.
func FloatTypes() []DType {
	return []DType{DTypeFloat16, DTypeBfloat16, DTypeFloat32, DTypeFloat64}
}

// IndexTypes returns the element types usable for index buffers.
func IndexTypes() []DType {
	return []DType{DTypeInt32, DTypeInt64}
}
