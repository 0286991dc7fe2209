// Package plan - HCL-Plandateien fuer Tensoren und Execution-Scopes
//
// Eine Plandatei deklariert Tensoren und Scopes:
//
//	tensor "x" {
//	  dtype  = "float32"
//	  shape  = [2, 3]
//	  values = [3, 1, 2, 6, 4, 5]
//	}
//
//	scope "rows" {
//	  repeat = 2
//	  node "sort" {
//	    op     = "sort_tad"
//	    inputs = ["x"]
//	    params = { dims = [1] }
//	  }
//	}
package plan

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ollama/opexec/logutil"
)

// Plan is the decoded content of one or more plan files.
type Plan struct {
	Tensors []*TensorDecl
	Scopes  []*ScopeDecl
}

// TensorDecl declares a named tensor and its initial contents. Without
// values the tensor is zero-filled.
type TensorDecl struct {
	Name   string    `hcl:"name,label"`
	DType  string    `hcl:"dtype"`
	Shape  []int     `hcl:"shape,optional"`
	Order  string    `hcl:"order,optional"`
	Values []float64 `hcl:"values,optional"`

	DeclRange hcl.Range `hcl:",def_range"`
}

// ScopeDecl declares a scope. Repeat or While turn it into a conditional
// scope: Repeat runs the body a fixed number of times, While replays it as
// long as the named bool tensor holds true.
type ScopeDecl struct {
	Name   string      `hcl:"name,label"`
	Repeat *int        `hcl:"repeat,optional"`
	While  *string     `hcl:"while,optional"`
	Nodes  []*NodeDecl `hcl:"node,block"`

	DeclRange hcl.Range `hcl:",def_range"`
}

// NodeDecl declares one operation of a scope. Params is evaluated lazily
// when the graph is built.
type NodeDecl struct {
	Name    string         `hcl:"name,label"`
	Op      string         `hcl:"op"`
	Inputs  []string       `hcl:"inputs"`
	Outputs []string       `hcl:"outputs,optional"`
	Params  hcl.Expression `hcl:"params,optional"`

	DeclRange hcl.Range `hcl:",def_range"`
}

type fileRoot struct {
	Tensors []*TensorDecl `hcl:"tensor,block"`
	Scopes  []*ScopeDecl  `hcl:"scope,block"`
}

// Parse decodes plan source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Plan, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse plan %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode plan %s: %w", filename, diags)
	}

	p := &Plan{Tensors: root.Tensors, Scopes: root.Scopes}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads and decodes the plan at path. A directory loads every .hcl
// file in it, in lexical order, as one plan.
func Load(path string) (*Plan, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = filepath.Glob(filepath.Join(path, "*.hcl")); err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no plan files in %s", path)
		}
	}

	p := &Plan{}
	for _, file := range files {
		src, err := readFile(file)
		if err != nil {
			return nil, err
		}

		fp, err := Parse(src, file)
		if err != nil {
			return nil, err
		}
		logutil.Trace("plan file parsed", "file", file, "bytes", len(src), "tensors", len(fp.Tensors), "scopes", len(fp.Scopes))

		p.Tensors = append(p.Tensors, fp.Tensors...)
		p.Scopes = append(p.Scopes, fp.Scopes...)
	}

	if err := p.check(); err != nil {
		return nil, err
	}

	slog.Debug("plan loaded", "path", path, "files", len(files), "tensors", len(p.Tensors), "scopes", len(p.Scopes))
	return p, nil
}

// readFile reads a plan file, dropping a byte order mark and converting
// UTF-16 input to UTF-8.
func readFile(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return io.ReadAll(transform.NewReader(f, tr))
}

// check rejects duplicate names and conflicting loop settings.
func (p *Plan) check() error {
	tensors := make(map[string]hcl.Range)
	for _, t := range p.Tensors {
		if prev, ok := tensors[t.Name]; ok {
			return fmt.Errorf("%s: tensor %q already declared at %s", t.DeclRange, t.Name, prev)
		}
		tensors[t.Name] = t.DeclRange
	}

	scopes := make(map[string]hcl.Range)
	for _, s := range p.Scopes {
		if prev, ok := scopes[s.Name]; ok {
			return fmt.Errorf("%s: scope %q already declared at %s", s.DeclRange, s.Name, prev)
		}
		scopes[s.Name] = s.DeclRange

		if s.Repeat != nil && s.While != nil {
			return fmt.Errorf("%s: scope %q sets both repeat and while", s.DeclRange, s.Name)
		}
		if s.Repeat != nil && *s.Repeat < 1 {
			return fmt.Errorf("%s: scope %q: repeat must be at least 1, got %d", s.DeclRange, s.Name, *s.Repeat)
		}
	}
	return nil
}
