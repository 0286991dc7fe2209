// sort.go - Sortierung ganzer Arrays
package kernels

import "slices"

// Sort sorts data in place in ascending order, or descending order if
// descending is set. The sort is stable in both directions: equal elements
// keep their relative order.
func Sort[T any](data []T, compare CompareFunc[T], descending bool) {
	slices.SortStableFunc(data, direction(compare, descending))
}
