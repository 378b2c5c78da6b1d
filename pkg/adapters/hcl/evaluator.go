// Package hcl evaluates cells written as HCL attribute bodies.
//
// A cell such as
//
//	a = 4 + 5
//	greeting = upper("hello ${name}")
//
// is evaluated attribute by attribute in source order. Bindings from parent
// cells are visible as variables, and so is every attribute evaluated
// earlier in the same cell. Every attribute becomes an output binding.
package hcl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Evaluator runs HCL cells in-process.
type Evaluator struct {
	logger    *slog.Logger
	functions map[string]function.Function
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// WithFunction registers an extra function, replacing a built-in of the same name.
func WithFunction(name string, fn function.Function) Option {
	return func(e *Evaluator) {
		e.functions[name] = fn
	}
}

// New creates an HCL evaluator with the standard function library.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		logger:    slog.New(slog.DiscardHandler),
		functions: standardFunctions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate implements ports.Evaluator.
func (e *Evaluator) Evaluate(ctx context.Context, req domain.EvalRequest) (domain.EvalResult, error) {
	filename := fmt.Sprintf("cell-%s.hcl", req.CellID)
	file, diags := hclsyntax.ParseConfig([]byte(req.Code), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return domain.EvalResult{}, fmt.Errorf("parse: %s", diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return domain.EvalResult{}, fmt.Errorf("unexpected body type %T", file.Body)
	}
	if len(body.Blocks) > 0 {
		b := body.Blocks[0]
		return domain.EvalResult{}, fmt.Errorf("%s: blocks are not supported in cells", b.DefRange().String())
	}

	vars := make(map[string]cty.Value, len(req.Bindings))
	for name, v := range req.Bindings {
		cv, err := ToCtyValue(v)
		if err != nil {
			return domain.EvalResult{}, fmt.Errorf("binding %q: %w", name, err)
		}
		vars[name] = cv
	}

	var stdout strings.Builder
	funcs := make(map[string]function.Function, len(e.functions)+1)
	for name, fn := range e.functions {
		funcs[name] = fn
	}
	funcs["print"] = printFunc(&stdout)

	evalCtx := &hcl.EvalContext{Variables: vars, Functions: funcs}
	outputs := make(map[string]any, len(body.Attributes))

	for _, attr := range orderedAttributes(body) {
		if err := ctx.Err(); err != nil {
			return domain.EvalResult{Stdout: stdout.String()}, err
		}

		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return domain.EvalResult{Stdout: stdout.String()}, fmt.Errorf("%s", diags.Error())
		}

		native, err := ctyToNative(val)
		if err != nil {
			return domain.EvalResult{Stdout: stdout.String()}, fmt.Errorf("%s: %w", attr.Name, err)
		}

		vars[attr.Name] = val
		outputs[attr.Name] = native
		e.logger.Debug("attribute evaluated", "cell_id", req.CellID, "name", attr.Name, "type", val.Type().FriendlyName())
	}

	return domain.EvalResult{Outputs: outputs, Stdout: stdout.String()}, nil
}

// orderedAttributes returns the attributes of body in source order.
func orderedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}
