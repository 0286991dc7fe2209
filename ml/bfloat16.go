// bfloat16.go - BFloat16-Elementtyp
// Speicherung als obere 16 Bit eines float32; Konvertierung ueber
// github.com/d4l3k/go-bfloat16.
package ml

import (
	"github.com/d4l3k/go-bfloat16"
)

// BFloat16 is the storage type for DTypeBfloat16 elements.
type BFloat16 bfloat16.BF16

// Float32 widens b to float32. The conversion is exact.
func (b BFloat16) Float32() float32 {
	return bfloat16.ToFloat32(bfloat16.BF16(b))
}

// Bits returns the raw 16 bit pattern.
func (b BFloat16) Bits() uint16 {
	return uint16(b)
}

// BFloat16Frombits reinterprets u as a bfloat16 value.
func BFloat16Frombits(u uint16) BFloat16 {
	return BFloat16(u)
}

// BFloat16FromFloat32 narrows f to bfloat16.
func BFloat16FromFloat32(f float32) BFloat16 {
	return BFloat16(bfloat16.FromFloat32(f))
}

// BFloat16sFromFloat32 narrows a float32 slice to bfloat16.
func BFloat16sFromFloat32(f32s []float32) []BFloat16 {
	bf16s := make([]BFloat16, len(f32s))
	for i, f := range f32s {
		bf16s[i] = BFloat16FromFloat32(f)
	}
	return bf16s
}
