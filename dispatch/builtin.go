// builtin.go - Eingebaute Kernel-Registrierung
//
// Registriert pro Element-Typ:
// - sort, sort_tad, sort_coo fuer alle Common-Types
// - ravel, unravel fuer int32/int64 Index-Puffer
// - encode_bitmap, decode_bitmap fuer alle Float-Types
package dispatch

import (
	"sync"

	"github.com/x448/float16"

	"github.com/ollama/opexec/envconfig"
	"github.com/ollama/opexec/kernels"
	"github.com/ollama/opexec/ml"
)

// Builtin returns the process-wide table of built-in kernels. It is built
// on first use and read-only afterwards.
var Builtin = sync.OnceValue(func() *Table {
	t := NewTable()

	registerSortable[bool](t, kernels.CompareBool)
	registerSortable[int8](t, kernels.CompareOrdered[int8])
	registerSortable[uint8](t, kernels.CompareOrdered[uint8])
	registerSortable[int16](t, kernels.CompareOrdered[int16])
	registerSortable[uint16](t, kernels.CompareOrdered[uint16])
	registerSortable[int32](t, kernels.CompareOrdered[int32])
	registerSortable[uint32](t, kernels.CompareOrdered[uint32])
	registerSortable[int64](t, kernels.CompareOrdered[int64])
	registerSortable[uint64](t, kernels.CompareOrdered[uint64])
	registerSortable[float16.Float16](t, kernels.CompareFloat16)
	registerSortable[ml.BFloat16](t, kernels.CompareBFloat16)
	registerSortable[float32](t, kernels.CompareOrdered[float32])
	registerSortable[float64](t, kernels.CompareOrdered[float64])

	registerIndex[int32](t)
	registerIndex[int64](t)

	registerFloat[float16.Float16](t)
	registerFloat[ml.BFloat16](t)
	registerFloat[float32](t)
	registerFloat[float64](t)

	return t
})

func registerSortable[T ml.Element](t *Table, compare kernels.CompareFunc[T]) {
	dtype := ml.DTypeOf[T]()

	t.mustRegister(FamilySort, dtype, func(req *Request) (Result, error) {
		data, err := ml.Data[T](req.Input)
		if err != nil {
			return Result{}, err
		}

		kernels.Sort(data, compare, req.Descending)
		return Result{}, nil
	})

	t.mustRegister(FamilySortTAD, dtype, func(req *Request) (Result, error) {
		data, err := ml.Data[T](req.Input)
		if err != nil {
			return Result{}, err
		}

		threads := int(envconfig.NumThreads())
		return Result{}, kernels.SortTAD(data, req.Input.Shape(), req.Dims, compare, req.Descending, threads)
	})

	t.mustRegister(FamilySortCOO, dtype, func(req *Request) (Result, error) {
		indices, err := ml.Data[int64](req.Input)
		if err != nil {
			return Result{}, err
		}

		values, err := ml.Data[T](req.Values)
		if err != nil {
			return Result{}, err
		}

		return Result{}, kernels.SortCOO(indices, values, req.Shape.Rank())
	})
}

func registerIndex[I kernels.Index](t *Table) {
	dtype := ml.DTypeOf[I]()

	t.mustRegister(FamilyRavel, dtype, func(req *Request) (Result, error) {
		indices, err := ml.Data[I](req.Input)
		if err != nil {
			return Result{}, err
		}

		flat, err := ml.Data[I](req.Output)
		if err != nil {
			return Result{}, err
		}

		return Result{}, kernels.Ravel(indices, flat, req.Shape, req.Mode)
	})

	t.mustRegister(FamilyUnravel, dtype, func(req *Request) (Result, error) {
		flat, err := ml.Data[I](req.Input)
		if err != nil {
			return Result{}, err
		}

		indices, err := ml.Data[I](req.Output)
		if err != nil {
			return Result{}, err
		}

		return Result{}, kernels.Unravel(flat, indices, req.Shape)
	})
}

func registerFloat[T kernels.Float](t *Table) {
	dtype := ml.DTypeOf[T]()

	t.mustRegister(FamilyEncodeBitmap, dtype, func(req *Request) (Result, error) {
		src, err := ml.Data[T](req.Input)
		if err != nil {
			return Result{}, err
		}

		dst, err := ml.Data[int32](req.Output)
		if err != nil {
			return Result{}, err
		}

		n, err := kernels.EncodeBitmap(src, dst, req.Threshold, req.Scheme)
		return Result{Count: n}, err
	})

	t.mustRegister(FamilyDecodeBitmap, dtype, func(req *Request) (Result, error) {
		src, err := ml.Data[int32](req.Input)
		if err != nil {
			return Result{}, err
		}

		dst, err := ml.Data[T](req.Output)
		if err != nil {
			return Result{}, err
		}

		return Result{}, kernels.DecodeBitmap(src, dst)
	})
}
