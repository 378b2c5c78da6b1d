package hcl

import (
	"encoding/json"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

func standardFunctions() map[string]function.Function {
	return map[string]function.Function{
		"abs":        stdlib.AbsoluteFunc,
		"ceil":       stdlib.CeilFunc,
		"concat":     stdlib.ConcatFunc,
		"floor":      stdlib.FloorFunc,
		"format":     stdlib.FormatFunc,
		"join":       stdlib.JoinFunc,
		"jsondecode": stdlib.JSONDecodeFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"keys":       stdlib.KeysFunc,
		"length":     stdlib.LengthFunc,
		"lower":      stdlib.LowerFunc,
		"max":        stdlib.MaxFunc,
		"merge":      stdlib.MergeFunc,
		"min":        stdlib.MinFunc,
		"range":      stdlib.RangeFunc,
		"reverse":    stdlib.ReverseListFunc,
		"sort":       stdlib.SortFunc,
		"split":      stdlib.SplitFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"upper":      stdlib.UpperFunc,
		"values":     stdlib.ValuesFunc,
	}
}

// printFunc writes its arguments, space separated, as one line to w and
// returns the line without the newline.
func printFunc(w *strings.Builder) function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{
			Name:             "values",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowDynamicType: true,
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				parts = append(parts, display(a))
			}
			line := strings.Join(parts, " ")
			w.WriteString(line)
			w.WriteByte('\n')
			return cty.StringVal(line), nil
		},
	})
}

// display renders a value the way a user expects to read it on stdout.
func display(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	if !v.IsKnown() {
		return "(unknown)"
	}
	if v.Type() == cty.String {
		return v.AsString()
	}
	native, err := ctyToNative(v)
	if err != nil {
		return v.GoString()
	}
	b, err := json.Marshal(native)
	if err != nil {
		return v.GoString()
	}
	return string(b)
}
