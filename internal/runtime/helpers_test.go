package runtime

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/stretchr/testify/require"
)

// arith is a tiny evaluator for tests. Code is "name = term (op term)*" where
// a term is an integer literal or a binding, and op is + or *, applied left
// to right. "fail" always fails and "block" waits for cancellation.
type arith struct {
	calls []string
}

func (a *arith) Evaluate(ctx context.Context, req domain.EvalRequest) (domain.EvalResult, error) {
	a.calls = append(a.calls, req.CellID)

	switch strings.TrimSpace(req.Code) {
	case "fail":
		return domain.EvalResult{Stdout: "partial"}, errors.New("boom")
	case "block":
		<-ctx.Done()
		return domain.EvalResult{}, ctx.Err()
	}

	name, expr, ok := strings.Cut(req.Code, "=")
	if !ok {
		return domain.EvalResult{}, fmt.Errorf("syntax error: %q", req.Code)
	}
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return domain.EvalResult{}, errors.New("syntax error: empty expression")
	}

	term := func(s string) (int, error) {
		if v, ok := req.Bindings[s]; ok {
			n, ok := v.(int)
			if !ok {
				return 0, fmt.Errorf("%s is not a number", s)
			}
			return n, nil
		}
		return strconv.Atoi(s)
	}

	acc, err := term(fields[0])
	if err != nil {
		return domain.EvalResult{}, err
	}
	for i := 1; i+1 < len(fields); i += 2 {
		n, err := term(fields[i+1])
		if err != nil {
			return domain.EvalResult{}, err
		}
		switch fields[i] {
		case "+":
			acc += n
		case "*":
			acc *= n
		default:
			return domain.EvalResult{}, fmt.Errorf("unknown operator %q", fields[i])
		}
	}

	return domain.EvalResult{
		Outputs: map[string]any{strings.TrimSpace(name): acc},
		Stdout:  fmt.Sprintf("%d\n", acc),
	}, nil
}

func (a *arith) count(id string) int {
	n := 0
	for _, c := range a.calls {
		if c == id {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *arith) {
	t.Helper()
	ev := &arith{}
	return NewEngine(domain.NewNotebook("test"), ev, opts...), ev
}

// addCell appends a cell with the given code, output name and inputs.
func addCell(t *testing.T, e *Engine, code, output string, inputs ...string) *domain.Cell {
	t.Helper()
	ctx := context.Background()
	c := e.AddCell(nil)
	require.NoError(t, e.SetCode(ctx, c.ID, code))
	if output != "" {
		require.NoError(t, e.SetOutputName(ctx, c.ID, output))
	}
	if len(inputs) > 0 {
		require.NoError(t, e.SetInputNames(ctx, c.ID, inputs))
	}
	return c
}
