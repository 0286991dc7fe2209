// build.go - Plan -> Graph + Bloecke
package plan

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/ollama/opexec/dispatch"
	"github.com/ollama/opexec/graph"
	"github.com/ollama/opexec/kernels"
	"github.com/ollama/opexec/ml"
)

// builder carries the state of one Build call.
type builder struct {
	g *graph.Graph

	// encoded maps bitmap buffers allocated by encode nodes to the tensor
	// they encode, so decode outputs can be inferred.
	encoded map[string]*ml.Tensor
}

// Build creates a graph holding the declared tensors and one block per
// scope, in declaration order. Outputs that are not declared tensors are
// allocated.
func (p *Plan) Build() (*graph.Graph, []graph.Block, error) {
	b := &builder{g: graph.New(), encoded: make(map[string]*ml.Tensor)}

	for _, decl := range p.Tensors {
		t, err := buildTensor(decl)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: tensor %q: %w", decl.DeclRange, decl.Name, err)
		}
		b.g.SetTensor(decl.Name, t)
	}

	blocks := make([]graph.Block, 0, len(p.Scopes))
	for _, decl := range p.Scopes {
		block, err := b.scope(decl)
		if err != nil {
			return nil, nil, err
		}
		blocks = append(blocks, block)
	}

	return b.g, blocks, nil
}

func buildTensor(decl *TensorDecl) (*ml.Tensor, error) {
	dtype, err := ml.ParseDType(decl.DType)
	if err != nil {
		return nil, err
	}

	order, err := parseOrder(decl.Order)
	if err != nil {
		return nil, err
	}

	dims := decl.Shape
	if dims == nil && decl.Values != nil {
		dims = []int{len(decl.Values)}
	}
	shape := ml.Shape{Dims: dims, Order: order}

	if decl.Values == nil {
		return ml.NewTensor(dtype, shape)
	}
	return ml.FromFloat64s(dtype, decl.Values, shape)
}

func (b *builder) scope(decl *ScopeDecl) (graph.Block, error) {
	s := b.g.NewScope(decl.Name)

	for _, nd := range decl.Nodes {
		n, err := b.node(nd)
		if err != nil {
			return nil, fmt.Errorf("%s: scope %q node %q: %w", nd.DeclRange, decl.Name, nd.Name, err)
		}
		s.Append(b.g.AddNode(n))
	}

	var pred graph.Predicate
	switch {
	case decl.Repeat != nil:
		pred = graph.Repeat(*decl.Repeat)
	case decl.While != nil:
		t, ok := b.g.Tensor(*decl.While)
		if !ok {
			return nil, fmt.Errorf("%s: scope %q: while refers to unknown tensor %q", decl.DeclRange, decl.Name, *decl.While)
		}
		if t.DType() != ml.DTypeBool {
			return nil, fmt.Errorf("%s: scope %q: while tensor %q is %s, not bool", decl.DeclRange, decl.Name, *decl.While, t.DType())
		}
		pred = graph.TensorTrue(*decl.While)
	default:
		return graph.UnconditionalScope{Body: s}, nil
	}

	s.Append(b.g.AddNode(&graph.Node{
		Name:      decl.Name + ".continue",
		Outputs:   []string{decl.Name + ".continue"},
		Predicate: pred,
	}))

	block, err := graph.NewConditionalScope(b.g, s)
	if err != nil {
		return nil, fmt.Errorf("%s: scope %q: %w", decl.DeclRange, decl.Name, err)
	}
	return block, nil
}

func (b *builder) node(nd *NodeDecl) (*graph.Node, error) {
	family, err := dispatch.ParseFamily(nd.Op)
	if err != nil {
		return nil, err
	}

	params, err := decodeParams(nd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", paramsRange(nd), err)
	}

	inputs := make([]*ml.Tensor, len(nd.Inputs))
	for i, name := range nd.Inputs {
		t, ok := b.g.Tensor(name)
		if !ok {
			return nil, fmt.Errorf("input %q is not defined", name)
		}
		inputs[i] = t
	}

	want := 1
	if family == dispatch.FamilySortCOO {
		want = 2
	}
	if len(inputs) != want {
		return nil, fmt.Errorf("%s takes %d inputs, got %d", family, want, len(inputs))
	}

	if err := b.outputs(nd, family, params, inputs); err != nil {
		return nil, err
	}

	return &graph.Node{
		Name:    nd.Name,
		Family:  family,
		Inputs:  nd.Inputs,
		Outputs: nd.Outputs,
		Attrs: graph.Attrs{
			Descending: params.Descending,
			Dims:       params.Dims,
			Mode:       params.Mode,
			Shape:      params.Shape,
			Threshold:  params.Threshold,
			Scheme:     params.Scheme,
		},
	}, nil
}

// outputs checks the output list of a node and allocates the outputs that
// do not exist yet.
func (b *builder) outputs(nd *NodeDecl, family dispatch.Family, params nodeParams, inputs []*ml.Tensor) error {
	limit := 0
	switch family {
	case dispatch.FamilyRavel, dispatch.FamilyUnravel, dispatch.FamilyDecodeBitmap:
		limit = 1
	case dispatch.FamilyEncodeBitmap:
		// buffer, optional flagged count
		limit = 2
	}
	if len(nd.Outputs) > limit {
		return fmt.Errorf("%s takes at most %d outputs, got %d", family, limit, len(nd.Outputs))
	}
	if limit > 0 && len(nd.Outputs) == 0 {
		return fmt.Errorf("%s needs an output", family)
	}
	if limit == 0 {
		return nil
	}

	name := nd.Outputs[0]
	if family == dispatch.FamilyEncodeBitmap {
		b.encoded[name] = inputs[0]
	}
	if _, ok := b.g.Tensor(name); ok {
		return nil
	}

	t, err := b.allocate(family, params, inputs[0], nd.Inputs[0])
	if err != nil {
		return fmt.Errorf("output %q: %w", name, err)
	}
	b.g.SetTensor(name, t)
	return nil
}

func (b *builder) allocate(family dispatch.Family, params nodeParams, in *ml.Tensor, inName string) (*ml.Tensor, error) {
	switch family {
	case dispatch.FamilyRavel:
		rank := params.Shape.Rank()
		if rank == 0 {
			return nil, errors.New("ravel needs a non-empty shape")
		}
		return ml.NewTensor(in.DType(), ml.NewShape(in.Len()/rank))

	case dispatch.FamilyUnravel:
		rank := params.Shape.Rank()
		if rank == 0 {
			return nil, errors.New("unravel needs a non-empty shape")
		}
		return ml.NewTensor(in.DType(), ml.NewShape(in.Len(), rank))

	case dispatch.FamilyEncodeBitmap:
		return ml.NewTensor(ml.DTypeInt32, ml.NewShape(kernels.BitmapWords(in.Len(), in.DType(), params.Scheme)))

	case dispatch.FamilyDecodeBitmap:
		if params.hasDType && params.hasShape {
			return ml.NewTensor(params.DType, ml.NewShape(params.Shape.Dims...))
		}
		if src, ok := b.encoded[inName]; ok {
			return ml.NewTensor(src.DType(), src.Shape())
		}

		words, err := ml.Data[int32](in)
		if err != nil {
			return nil, err
		}
		h, err := kernels.ReadBitmapHeader(words)
		if err != nil {
			return nil, fmt.Errorf("cannot infer decode output, set dtype and shape: %w", err)
		}
		return ml.NewTensor(h.DType, ml.NewShape(h.Count))
	}

	return nil, fmt.Errorf("%s has no outputs", family)
}

func paramsRange(nd *NodeDecl) hcl.Range {
	if nd.Params != nil {
		return nd.Params.Range()
	}
	return nd.DeclRange
}
