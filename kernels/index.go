// index.go - Ravel/Unravel von Multi-Indizes
// Enthaelt: ClipMode, Ravel, Unravel
package kernels

import (
	"fmt"
	"strings"

	"github.com/ollama/opexec/ml"
)

// ClipMode selects how Ravel treats coordinates outside the shape.
type ClipMode int

const (
	// ClipModeThrow reports ErrIndexOutOfBounds.
	ClipModeThrow ClipMode = iota
	// ClipModeWrap wraps coordinates modulo the dimension.
	ClipModeWrap
	// ClipModeClip clamps coordinates to [0, dim-1].
	ClipModeClip
)

func (m ClipMode) String() string {
	switch m {
	case ClipModeThrow:
		return "throw"
	case ClipModeWrap:
		return "wrap"
	case ClipModeClip:
		return "clip"
	default:
		return fmt.Sprintf("ClipMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the declared modes.
func (m ClipMode) Valid() bool {
	return m >= ClipModeThrow && m <= ClipModeClip
}

// ParseClipMode parses "throw" (or "raise"), "wrap" and "clip".
func ParseClipMode(s string) (ClipMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "throw", "raise":
		return ClipModeThrow, nil
	case "wrap":
		return ClipModeWrap, nil
	case "clip", "clamp":
		return ClipModeClip, nil
	}
	return ClipModeThrow, fmt.Errorf("unknown clip mode %q", s)
}

// Index is the set of element types usable as index buffers.
type Index interface {
	int32 | int64
}

// Ravel converts len(flat) multi-indices, stored rank coordinates each in
// indices, into linear buffer offsets for shape. Offsets follow the shape's
// memory order.
func Ravel[I Index](indices, flat []I, shape ml.Shape, mode ClipMode) error {
	rank := shape.Rank()
	if len(indices) != len(flat)*rank {
		return fmt.Errorf("%w: %d coordinates for %d indices of rank %d", ErrLengthMismatch, len(indices), len(flat), rank)
	}

	strides := shape.Strides()
	for i := range flat {
		var r int64
		for j := range rank {
			idx := int64(indices[i*rank+j])
			dim := int64(shape.Dims[j])
			if idx < 0 || idx >= dim {
				switch {
				case dim == 0:
					return fmt.Errorf("%w: index %d has coordinate %d on empty axis %d", ErrIndexOutOfBounds, i, idx, j)
				case mode == ClipModeClip:
					idx = max(0, min(idx, dim-1))
				case mode == ClipModeWrap:
					idx %= dim
					if idx < 0 {
						idx += dim
					}
				default:
					return fmt.Errorf("%w: index %d has coordinate %d outside [0, %d) on axis %d", ErrIndexOutOfBounds, i, idx, dim, j)
				}
			}
			r += idx * int64(strides[j])
		}
		if int64(I(r)) != r {
			return fmt.Errorf("%w: index %d has offset %d, which does not fit the index type", ErrIndexOutOfBounds, i, r)
		}
		flat[i] = I(r)
	}

	return nil
}

// Unravel is the inverse of Ravel for in-bounds offsets: it writes rank
// coordinates per entry of flat into indices.
func Unravel[I Index](flat, indices []I, shape ml.Shape) error {
	rank := shape.Rank()
	if len(indices) != len(flat)*rank {
		return fmt.Errorf("%w: %d coordinates for %d indices of rank %d", ErrLengthMismatch, len(indices), len(flat), rank)
	}

	total := int64(shape.Len())
	for i, f := range flat {
		r := int64(f)
		if r < 0 || r >= total {
			return fmt.Errorf("%w: flat index %d is %d, shape holds %d elements", ErrIndexOutOfBounds, i, r, total)
		}

		coords := indices[i*rank : (i+1)*rank]
		if shape.IsFortran() {
			for j := 0; j < rank; j++ {
				dim := int64(shape.Dims[j])
				coords[j] = I(r % dim)
				r /= dim
			}
		} else {
			for j := rank - 1; j >= 0; j-- {
				dim := int64(shape.Dims[j])
				coords[j] = I(r % dim)
				r /= dim
			}
		}
	}

	return nil
}
