// request.go - Dispatch-Anfrage und Ergebnis
package dispatch

import (
	"errors"

	"github.com/ollama/opexec/kernels"
	"github.com/ollama/opexec/ml"
)

// Request carries the operands of one operation. Which fields are used
// depends on the family:
//
//	sort           Input (sorted in place), Descending
//	sort_tad       Input (sorted in place), Dims, Descending
//	sort_coo       Input (int64 coordinates, n*rank), Values (n), Shape
//	ravel          Input (n*rank coordinates), Output (n offsets), Shape, Mode
//	unravel        Input (n offsets), Output (n*rank coordinates), Shape
//	encode_bitmap  Input (float values), Output (int32 words), Threshold, Scheme
//	decode_bitmap  Input (int32 words), Output (float values)
//
// Buffers are owned by the caller; kernels work in place or write into
// Output.
type Request struct {
	Family Family

	Input  *ml.Tensor
	Values *ml.Tensor
	Output *ml.Tensor

	// Shape is the dense shape for sparse and index families.
	Shape ml.Shape

	Dims       []int
	Descending bool
	Mode       kernels.ClipMode
	Threshold  float32
	Scheme     kernels.Scheme
}

// Result holds scalar outputs of a kernel.
type Result struct {
	// Count is the number of flagged elements for encode_bitmap.
	Count int
}

// ElementType returns the runtime element type that selects the kernel.
func (r *Request) ElementType() (ml.DType, error) {
	var t *ml.Tensor
	switch r.Family {
	case FamilySortCOO:
		t = r.Values
		if t == nil {
			return ml.DTypeOther, errors.New("missing values operand")
		}
	case FamilyDecodeBitmap:
		t = r.Output
		if t == nil {
			return ml.DTypeOther, errors.New("missing output operand")
		}
	default:
		t = r.Input
		if t == nil {
			return ml.DTypeOther, errors.New("missing input operand")
		}
	}
	return t.DType(), nil
}
