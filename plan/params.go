// params.go - Auswertung der node-Parameter (cty -> Go)
package plan

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/ollama/opexec/envconfig"
	"github.com/ollama/opexec/kernels"
	"github.com/ollama/opexec/ml"
)

// nodeParams holds the evaluated params of a node.
type nodeParams struct {
	Descending bool
	Dims       []int
	Mode       kernels.ClipMode
	Shape      ml.Shape
	Threshold  float32
	Scheme     kernels.Scheme

	// DType selects the element type of allocated outputs.
	DType    ml.DType
	hasDType bool
	hasShape bool
}

func decodeAs[T any](v cty.Value, ty cty.Type) (T, error) {
	var out T
	cv, err := convert.Convert(v, ty)
	if err != nil {
		return out, err
	}
	err = gocty.FromCtyValue(cv, &out)
	return out, err
}

func parseOrder(s string) (ml.Order, error) {
	switch strings.ToLower(s) {
	case "", "c":
		return ml.OrderC, nil
	case "f", "fortran":
		return ml.OrderF, nil
	}
	return 0, fmt.Errorf("unknown order %q", s)
}

// decodeParams evaluates the params expression of n. A missing params
// attribute yields the defaults.
func decodeParams(n *NodeDecl) (nodeParams, error) {
	p := nodeParams{
		Threshold: envconfig.BitmapThreshold(),
	}

	scheme, err := kernels.ParseScheme(envconfig.BitmapScheme())
	if err != nil {
		return p, fmt.Errorf("OPEXEC_BITMAP_SCHEME: %w", err)
	}
	p.Scheme = scheme

	if n.Params == nil {
		return p, nil
	}

	val, diags := n.Params.Value(nil)
	if diags.HasErrors() {
		return p, diags
	}
	if val.IsNull() {
		return p, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return p, fmt.Errorf("params must be an object, got %s", val.Type().FriendlyName())
	}

	m := val.AsValueMap()
	order := ml.OrderC
	for _, key := range slices.Sorted(maps.Keys(m)) {
		v := m[key]
		var err error
		switch key {
		case "descending":
			p.Descending, err = decodeAs[bool](v, cty.Bool)
		case "dims":
			p.Dims, err = decodeAs[[]int](v, cty.List(cty.Number))
		case "mode":
			var s string
			if s, err = decodeAs[string](v, cty.String); err == nil {
				p.Mode, err = kernels.ParseClipMode(s)
			}
		case "shape":
			p.Shape.Dims, err = decodeAs[[]int](v, cty.List(cty.Number))
			p.hasShape = true
		case "order":
			var s string
			if s, err = decodeAs[string](v, cty.String); err == nil {
				order, err = parseOrder(s)
			}
		case "threshold":
			var f float64
			if f, err = decodeAs[float64](v, cty.Number); err == nil {
				p.Threshold = float32(f)
			}
		case "scheme":
			var s string
			if s, err = decodeAs[string](v, cty.String); err == nil {
				p.Scheme, err = kernels.ParseScheme(s)
			}
		case "dtype":
			var s string
			if s, err = decodeAs[string](v, cty.String); err == nil {
				p.DType, err = ml.ParseDType(s)
				p.hasDType = true
			}
		default:
			err = errors.New("unsupported parameter")
		}
		if err != nil {
			return p, fmt.Errorf("param %q: %w", key, err)
		}
	}

	p.Shape.Order = order
	if err := p.Shape.Validate(); err != nil {
		return p, fmt.Errorf("param \"shape\": %w", err)
	}
	return p, nil
}
