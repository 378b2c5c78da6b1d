package runtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/ports"
)

// Engine is the dependency graph and execution engine for one notebook.
// It is synchronous and not safe for concurrent use: callers serialize
// commands per notebook (see pkg/session).
type Engine struct {
	nb        *domain.Notebook
	evaluator ports.Evaluator
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	timeout   time.Duration
	now       func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithEvalTimeout bounds every evaluator call. Zero disables the bound.
func WithEvalTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// errNoEvaluator is reported as an evaluation failure when no evaluator was configured.
var errNoEvaluator = errors.New("no evaluator configured")

// NewEngine creates an engine that owns nb for its lifetime.
// A nil evaluator makes every run fail with an evaluation error.
func NewEngine(nb *domain.Notebook, evaluator ports.Evaluator, opts ...EngineOption) *Engine {
	if nb.Cells == nil {
		nb.Cells = []*domain.Cell{}
	}
	e := &Engine{
		nb:        nb,
		evaluator: evaluator,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.evaluator == nil {
		e.evaluator = ports.EvaluatorFunc(func(context.Context, domain.EvalRequest) (domain.EvalResult, error) {
			return domain.EvalResult{}, errNoEvaluator
		})
	}
	e.logger = e.logger.With("notebook", nb.ID)
	return e
}

// Notebook returns the live document owned by the engine.
// Callers that hand it to other goroutines must take a Snapshot.
func (e *Engine) Notebook() *domain.Notebook {
	return e.nb
}

// SetName renames the notebook.
func (e *Engine) SetName(name string) {
	e.nb.Name = name
}

func (e *Engine) event(typ domain.EventType, c *domain.Cell) *domain.CellEvent {
	return &domain.CellEvent{
		Timestamp:  e.now(),
		Type:       typ,
		NotebookID: e.nb.ID,
		CellID:     c.ID,
		OutputName: c.OutputName,
		Language:   c.Language,
		Status:     c.Status,
	}
}
