// tad.go - Sortierung entlang ausgewaehlter Achsen (TAD)
//
// Ein TAD (tensor along dimension) ist das Teil-Array, das entsteht,
// wenn alle nicht gelisteten Achsen fixiert werden. Jedes TAD wird
// unabhaengig sortiert; die Arbeit wird per errgroup verteilt.
package kernels

import (
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ollama/opexec/ml"
)

// TADOffsets splits a contiguous tensor of the given shape into sub-arrays
// spanning axes. bases holds the buffer offset of the first element of each
// sub-array; offsets holds the positions of the sub-array elements relative
// to its base, in row-major order of the (ascending) axes.
func TADOffsets(shape ml.Shape, axes []int) (bases, offsets []int, err error) {
	axes, err = ml.NormalizeAxes(axes, shape.Rank())
	if err != nil {
		return nil, nil, err
	}
	slices.Sort(axes)

	strides := shape.Strides()
	var innerDims, innerStrides, outerDims, outerStrides []int
	for i, d := range shape.Dims {
		if slices.Contains(axes, i) {
			innerDims = append(innerDims, d)
			innerStrides = append(innerStrides, strides[i])
		} else {
			outerDims = append(outerDims, d)
			outerStrides = append(outerStrides, strides[i])
		}
	}

	return enumerate(outerDims, outerStrides), enumerate(innerDims, innerStrides), nil
}

// enumerate lists the buffer offsets of every multi-index over dims in
// row-major order.
func enumerate(dims, strides []int) []int {
	n := 1
	for _, d := range dims {
		n *= d
	}

	out := make([]int, 0, n)
	if n == 0 {
		return out
	}

	idx := make([]int, len(dims))
	for range n {
		off := 0
		for j := range idx {
			off += idx[j] * strides[j]
		}
		out = append(out, off)

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

// SortTAD sorts every sub-array of data spanning axes independently. Up to
// threads sub-array groups are sorted concurrently; threads <= 0 uses
// GOMAXPROCS.
func SortTAD[T any](data []T, shape ml.Shape, axes []int, compare CompareFunc[T], descending bool, threads int) error {
	if len(data) != shape.Len() {
		return fmt.Errorf("%w: %d elements for shape %v", ErrLengthMismatch, len(data), shape)
	}

	bases, offsets, err := TADOffsets(shape, axes)
	if err != nil {
		return err
	}
	if len(bases) == 0 || len(offsets) < 2 {
		return nil
	}

	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	threads = min(threads, len(bases))

	cmpFn := direction(compare, descending)
	contiguous := isIdentity(offsets)

	var g errgroup.Group
	g.SetLimit(threads)
	for chunk := range slices.Chunk(bases, (len(bases)+threads-1)/threads) {
		g.Go(func() error {
			if contiguous {
				for _, base := range chunk {
					slices.SortStableFunc(data[base:base+len(offsets)], cmpFn)
				}
				return nil
			}

			buf := make([]T, len(offsets))
			for _, base := range chunk {
				for k, off := range offsets {
					buf[k] = data[base+off]
				}
				slices.SortStableFunc(buf, cmpFn)
				for k, off := range offsets {
					data[base+off] = buf[k]
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func isIdentity(offsets []int) bool {
	for k, off := range offsets {
		if off != k {
			return false
		}
	}
	return true
}
