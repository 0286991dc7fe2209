// bitmap.go - Schwellwert-Bitmap-Kodierung fuer Gradienten-Kompression
//
// Format (int32-Woerter):
//
//	0     Magic "OPBX"
//	1     Anzahl Elemente N
//	2     Anzahl markierter Elemente K
//	3     Schwellwert (float32-Bits)
//	4     Schema (1 = exact, 2 = quantized)
//	5     Element-DType
//	6..   ceil(N/16) Flag-Woerter: Bit b = Element markiert, Bit 16+b = negativ
//	danach (nur exact) K Rohwerte in Element-Reihenfolge
package kernels

import (
	"fmt"
	"math"
	"strings"

	"github.com/x448/float16"

	"github.com/ollama/opexec/ml"
)

// BitmapMagic marks the first word of every encoded buffer.
const BitmapMagic int32 = 0x4F504258

const (
	bitmapHeaderWords   = 6
	elementsPerFlagWord = 16
)

// Scheme selects what the encoding keeps of the flagged elements.
type Scheme int32

const (
	// SchemeExact stores the raw value of every flagged element and leaves
	// the source untouched.
	SchemeExact Scheme = 1
	// SchemeQuantized stores only the sign of flagged elements; decoding
	// yields +/-threshold. Encoding subtracts the transmitted amount from the
	// source so the residual can be accumulated.
	SchemeQuantized Scheme = 2
)

func (s Scheme) String() string {
	switch s {
	case SchemeExact:
		return "exact"
	case SchemeQuantized:
		return "quantized"
	default:
		return fmt.Sprintf("Scheme(%d)", int32(s))
	}
}

// Valid reports whether s is a declared scheme.
func (s Scheme) Valid() bool {
	return s == SchemeExact || s == SchemeQuantized
}

// ParseScheme parses "exact" or "quantized".
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return SchemeExact, nil
	case "quantized", "sign":
		return SchemeQuantized, nil
	}
	return 0, fmt.Errorf("unknown bitmap scheme %q", s)
}

// Float is the set of element types the bitmap codec handles.
type Float interface {
	float16.Float16 | ml.BFloat16 | float32 | float64
}

// BitmapHeader is the decoded header of an encoded buffer.
type BitmapHeader struct {
	Count     int
	Flagged   int
	Threshold float32
	Scheme    Scheme
	DType     ml.DType
}

// Words returns the total length of the encoding described by h.
func (h BitmapHeader) Words() int {
	w := bitmapHeaderWords + flagWords(h.Count)
	if h.Scheme == SchemeExact {
		w += h.Flagged * valueWords(h.DType)
	}
	return w
}

// ReadBitmapHeader decodes and sanity checks the header of buf.
func ReadBitmapHeader(buf []int32) (BitmapHeader, error) {
	if len(buf) < bitmapHeaderWords {
		return BitmapHeader{}, fmt.Errorf("%w: %d words, header needs %d", ErrCorruptBitmap, len(buf), bitmapHeaderWords)
	}
	if buf[0] != BitmapMagic {
		return BitmapHeader{}, fmt.Errorf("%w: bad magic %#x", ErrCorruptBitmap, uint32(buf[0]))
	}

	h := BitmapHeader{
		Count:     int(buf[1]),
		Flagged:   int(buf[2]),
		Threshold: math.Float32frombits(uint32(buf[3])),
		Scheme:    Scheme(buf[4]),
		DType:     ml.DType(buf[5]),
	}

	switch {
	case h.Count < 0, h.Flagged < 0, h.Flagged > h.Count:
		return h, fmt.Errorf("%w: %d of %d elements flagged", ErrCorruptBitmap, h.Flagged, h.Count)
	case !h.Scheme.Valid():
		return h, fmt.Errorf("%w: unknown scheme %d", ErrCorruptBitmap, int32(h.Scheme))
	case !h.DType.IsFloat():
		return h, fmt.Errorf("%w: unsupported element type %s", ErrCorruptBitmap, h.DType)
	case len(buf) < h.Words():
		return h, fmt.Errorf("%w: %d words, payload needs %d", ErrCorruptBitmap, len(buf), h.Words())
	}

	return h, nil
}

// BitmapWords returns the worst-case encoded size in words for n elements.
func BitmapWords(n int, dtype ml.DType, scheme Scheme) int {
	return BitmapHeader{Count: n, Flagged: n, Scheme: scheme, DType: dtype}.Words()
}

func flagWords(n int) int {
	return (n + elementsPerFlagWord - 1) / elementsPerFlagWord
}

func valueWords(dtype ml.DType) int {
	if dtype == ml.DTypeFloat64 {
		return 2
	}
	return 1
}

// EncodeBitmap encodes src into dst and returns the number of flagged
// elements. An element is flagged when |v| >= threshold.
func EncodeBitmap[T Float](src []T, dst []int32, threshold float32, scheme Scheme) (int, error) {
	if !scheme.Valid() {
		return 0, fmt.Errorf("unknown bitmap scheme %d", int32(scheme))
	}

	t := float64(threshold)
	flagged := 0
	for _, v := range src {
		if math.Abs(toFloat64(v)) >= t {
			flagged++
		}
	}

	h := BitmapHeader{
		Count:     len(src),
		Flagged:   flagged,
		Threshold: threshold,
		Scheme:    scheme,
		DType:     ml.DTypeOf[T](),
	}
	if len(dst) < h.Words() {
		return 0, fmt.Errorf("%w: %d words, encoding needs %d", ErrShortBuffer, len(dst), h.Words())
	}

	dst[0] = BitmapMagic
	dst[1] = int32(h.Count)
	dst[2] = int32(h.Flagged)
	dst[3] = int32(math.Float32bits(threshold))
	dst[4] = int32(scheme)
	dst[5] = int32(h.DType)

	vw := valueWords(h.DType)
	pos := bitmapHeaderWords + flagWords(len(src))
	for w := range flagWords(len(src)) {
		var word uint32
		for b := range elementsPerFlagWord {
			e := w*elementsPerFlagWord + b
			if e >= len(src) {
				break
			}

			f := toFloat64(src[e])
			if math.Abs(f) < t || math.IsNaN(f) {
				continue
			}

			word |= 1 << b
			if f < 0 {
				word |= 1 << (b + elementsPerFlagWord)
			}

			switch scheme {
			case SchemeExact:
				putWords(src[e], dst[pos:pos+vw])
				pos += vw
			case SchemeQuantized:
				if f < 0 {
					src[e] = fromFloat64[T](f + t)
				} else {
					src[e] = fromFloat64[T](f - t)
				}
			}
		}
		dst[bitmapHeaderWords+w] = int32(word)
	}

	return flagged, nil
}

// DecodeBitmap reconstructs dst from an encoding produced by EncodeBitmap.
// Elements that were not flagged decode to zero.
func DecodeBitmap[T Float](src []int32, dst []T) error {
	h, err := ReadBitmapHeader(src)
	if err != nil {
		return err
	}
	if h.Count != len(dst) {
		return fmt.Errorf("%w: encoding holds %d elements, output has %d", ErrLengthMismatch, h.Count, len(dst))
	}
	if h.DType != ml.DTypeOf[T]() {
		return fmt.Errorf("%w: encoded %s, output is %s", ErrCorruptBitmap, h.DType, ml.DTypeOf[T]())
	}

	var zero T
	t := float64(h.Threshold)
	vw := valueWords(h.DType)
	pos := bitmapHeaderWords + flagWords(h.Count)
	seen := 0
	for e := range dst {
		word := uint32(src[bitmapHeaderWords+e/elementsPerFlagWord])
		b := e % elementsPerFlagWord
		if word>>b&1 == 0 {
			dst[e] = zero
			continue
		}

		seen++
		if seen > h.Flagged {
			return fmt.Errorf("%w: more than %d flagged elements", ErrCorruptBitmap, h.Flagged)
		}

		switch h.Scheme {
		case SchemeExact:
			dst[e] = getWords[T](src[pos : pos+vw])
			pos += vw
		case SchemeQuantized:
			if word>>(b+elementsPerFlagWord)&1 == 1 {
				dst[e] = fromFloat64[T](-t)
			} else {
				dst[e] = fromFloat64[T](t)
			}
		}
	}

	if seen != h.Flagged {
		return fmt.Errorf("%w: header announces %d flagged elements, found %d", ErrCorruptBitmap, h.Flagged, seen)
	}
	return nil
}

func toFloat64[T Float](v T) float64 {
	switch x := any(v).(type) {
	case float16.Float16:
		return float64(x.Float32())
	case ml.BFloat16:
		return float64(x.Float32())
	case float32:
		return float64(x)
	case float64:
		return x
	}
	panic("unreachable")
}

func fromFloat64[T Float](f float64) T {
	var v T
	switch p := any(&v).(type) {
	case *float16.Float16:
		*p = float16.Fromfloat32(float32(f))
	case *ml.BFloat16:
		*p = ml.BFloat16FromFloat32(float32(f))
	case *float32:
		*p = float32(f)
	case *float64:
		*p = f
	}
	return v
}

func putWords[T Float](v T, dst []int32) {
	switch x := any(v).(type) {
	case float16.Float16:
		dst[0] = int32(x.Bits())
	case ml.BFloat16:
		dst[0] = int32(x.Bits())
	case float32:
		dst[0] = int32(math.Float32bits(x))
	case float64:
		bits := math.Float64bits(x)
		dst[0] = int32(uint32(bits))
		dst[1] = int32(uint32(bits >> 32))
	}
}

func getWords[T Float](src []int32) T {
	var v T
	switch p := any(&v).(type) {
	case *float16.Float16:
		*p = float16.Frombits(uint16(src[0]))
	case *ml.BFloat16:
		*p = ml.BFloat16Frombits(uint16(src[0]))
	case *float32:
		*p = math.Float32frombits(uint32(src[0]))
	case *float64:
		*p = math.Float64frombits(uint64(uint32(src[0])) | uint64(uint32(src[1]))<<32)
	}
	return v
}
