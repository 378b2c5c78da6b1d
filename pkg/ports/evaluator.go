package ports

import (
	"context"

	"github.com/aretw0/cado/pkg/domain"
)

// Evaluator executes a code fragment against named input bindings.
// A non-nil error is a failed evaluation; its message is shown to the user.
// Implementations must not retain or mutate req.Bindings.
type Evaluator interface {
	Evaluate(ctx context.Context, req domain.EvalRequest) (domain.EvalResult, error)
}

// EvaluatorFunc adapts an ordinary function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, req domain.EvalRequest) (domain.EvalResult, error)

// Evaluate calls f(ctx, req).
func (f EvaluatorFunc) Evaluate(ctx context.Context, req domain.EvalRequest) (domain.EvalResult, error) {
	return f(ctx, req)
}
