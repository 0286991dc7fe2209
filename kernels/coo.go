// coo.go - Sortierung von COO-Indizes fuer Sparse-Tensoren
package kernels

import (
	"fmt"
	"slices"
)

// SortCOO reorders the coordinate/value pairs of a sparse tensor into
// row-major (lexicographic) coordinate order. indices holds rank
// coordinates per value. Pairs with equal coordinates keep their order.
func SortCOO[T any](indices []int64, values []T, rank int) error {
	n := len(values)
	if rank < 0 || len(indices) != n*rank {
		return fmt.Errorf("%w: %d indices for %d values of rank %d", ErrLengthMismatch, len(indices), n, rank)
	}
	if n < 2 || rank == 0 {
		return nil
	}

	coords := func(i int) []int64 {
		return indices[i*rank : (i+1)*rank]
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		return slices.Compare(coords(a), coords(b))
	})

	sortedIndices := make([]int64, len(indices))
	sortedValues := make([]T, n)
	for dst, src := range perm {
		copy(sortedIndices[dst*rank:(dst+1)*rank], coords(src))
		sortedValues[dst] = values[src]
	}

	copy(indices, sortedIndices)
	copy(values, sortedValues)
	return nil
}
