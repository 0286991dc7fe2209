// validate.go - Operanden-Pruefung vor dem Kernel-Aufruf
package dispatch

import (
	"errors"
	"fmt"
	"math"

	"github.com/ollama/opexec/kernels"
	"github.com/ollama/opexec/ml"
)

// validate checks the operand metadata of req against the preconditions of
// its family. It never touches buffer contents except for the bitmap header.
func validate(req *Request) error {
	switch req.Family {
	case FamilySort:
		return nil

	case FamilySortTAD:
		if _, err := ml.NormalizeAxes(req.Dims, req.Input.Rank()); err != nil {
			return fmt.Errorf("dims %v: %w", req.Dims, err)
		}
		return nil

	case FamilySortCOO:
		if req.Input == nil {
			return errors.New("missing coordinate operand")
		}
		if req.Input.DType() != ml.DTypeInt64 {
			return fmt.Errorf("coordinates must be int64, got %s", req.Input.DType())
		}
		if err := req.Shape.Validate(); err != nil {
			return fmt.Errorf("shape: %w", err)
		}
		if want := req.Values.Len() * req.Shape.Rank(); req.Input.Len() != want {
			return fmt.Errorf("%d coordinates for %d values of rank %d", req.Input.Len(), req.Values.Len(), req.Shape.Rank())
		}
		return nil

	case FamilyRavel, FamilyUnravel:
		if req.Output == nil {
			return errors.New("missing output operand")
		}
		if req.Output.DType() != req.Input.DType() {
			return fmt.Errorf("output is %s, input is %s", req.Output.DType(), req.Input.DType())
		}
		if err := req.Shape.Validate(); err != nil {
			return fmt.Errorf("shape: %w", err)
		}

		coords, flat := req.Input, req.Output
		if req.Family == FamilyUnravel {
			coords, flat = req.Output, req.Input
		} else if !req.Mode.Valid() {
			return fmt.Errorf("unknown clip mode %d", int(req.Mode))
		}

		if coords.Len() != flat.Len()*req.Shape.Rank() {
			return fmt.Errorf("%d coordinates for %d indices of rank %d", coords.Len(), flat.Len(), req.Shape.Rank())
		}
		if req.Input.DType() == ml.DTypeInt32 && req.Shape.Len()-1 > math.MaxInt32 {
			return fmt.Errorf("shape %v holds %d elements, offsets do not fit int32", req.Shape, req.Shape.Len())
		}
		return nil

	case FamilyEncodeBitmap:
		if req.Output == nil {
			return errors.New("missing output operand")
		}
		if req.Output.DType() != ml.DTypeInt32 {
			return fmt.Errorf("encoded buffer must be int32, got %s", req.Output.DType())
		}
		if t := float64(req.Threshold); t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("threshold %v must be finite and non-negative", req.Threshold)
		}
		if !req.Scheme.Valid() {
			return fmt.Errorf("unknown bitmap scheme %d", int32(req.Scheme))
		}
		return nil

	case FamilyDecodeBitmap:
		if req.Input == nil {
			return errors.New("missing encoded operand")
		}
		words, err := ml.Data[int32](req.Input)
		if err != nil {
			return fmt.Errorf("encoded buffer must be int32, got %s", req.Input.DType())
		}

		h, err := kernels.ReadBitmapHeader(words)
		if err != nil {
			return err
		}
		if h.DType != req.Output.DType() {
			return fmt.Errorf("encoding holds %s, output is %s", h.DType, req.Output.DType())
		}
		if h.Count != req.Output.Len() {
			return fmt.Errorf("encoding holds %d elements, output has %d", h.Count, req.Output.Len())
		}
		return nil
	}

	return fmt.Errorf("%w: %d", ErrUnknownFamily, int(req.Family))
}
