package cado

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/cado/internal/runtime"
	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/ports"
)

// Engine is the high-level entry point for the cado library.
// It wraps the internal runtime and hands out copies of the notebook so
// callers cannot bypass the engine's invariants.
//
// An Engine is not safe for concurrent use. Hosts serialize commands per
// notebook, see pkg/session.
type Engine struct {
	runtime   *runtime.Engine
	evaluator ports.Evaluator
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithEvaluator sets the evaluator cells are run with.
func WithEvaluator(ev ports.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = ev
	}
}

// WithLifecycleHooks registers observability hooks.
// Repeated calls merge the hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEvalTimeout bounds each evaluator call.
func WithEvalTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine that takes ownership of nb.
// A nil notebook starts an empty, unnamed one.
func New(nb *domain.Notebook, opts ...Option) *Engine {
	eng := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(eng)
	}

	if nb == nil {
		nb = domain.NewNotebook("")
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.now == nil {
		eng.now = time.Now
	}

	eng.runtime = runtime.NewEngine(nb, eng.evaluator,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithEvalTimeout(eng.timeout),
		runtime.WithClock(eng.now),
	)
	return eng
}

// Notebook returns a snapshot of the document.
func (e *Engine) Notebook() *domain.Notebook {
	return e.runtime.Notebook().Snapshot()
}

// Cell returns a copy of one cell.
func (e *Engine) Cell(id string) (*domain.Cell, error) {
	c, err := e.runtime.Cell(id)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// Unresolved lists the input names of a cell that no cell produces.
func (e *Engine) Unresolved(id string) ([]string, error) {
	c, err := e.runtime.Cell(id)
	if err != nil {
		return nil, err
	}
	return e.runtime.Unresolved(c), nil
}

// AddCell inserts a new, empty cell at index (nil appends).
func (e *Engine) AddCell(index *int) *domain.Cell {
	var c *domain.Cell
	_ = e.commit(func() error {
		c = e.runtime.AddCell(index)
		return nil
	})
	return c.Clone()
}

// DeleteCell removes a cell. Cells that referenced its output keep the
// reference and report it as unresolved on their next run.
func (e *Engine) DeleteCell(id string) error {
	return e.commit(func() error { return e.runtime.DeleteCell(id) })
}

// ReorderCells sets the display order; ids must be a permutation of the cell ids.
func (e *Engine) ReorderCells(ids []string) error {
	return e.commit(func() error { return e.runtime.ReorderCells(ids) })
}

// UpdateNotebookName renames the notebook.
func (e *Engine) UpdateNotebookName(name string) {
	_ = e.commit(func() error {
		e.runtime.SetName(name)
		return nil
	})
}

// SetCellCode replaces the code of a cell and expires its descendants.
func (e *Engine) SetCellCode(ctx context.Context, id, code string) (*domain.Cell, error) {
	return e.mutate(id, func() error { return e.runtime.SetCode(ctx, id, code) })
}

// UpdateCellOutputName renames the output of a cell.
// On ErrDuplicateOutputName the returned cell is in ERROR with no output name.
func (e *Engine) UpdateCellOutputName(ctx context.Context, id, name string) (*domain.Cell, error) {
	return e.mutate(id, func() error { return e.runtime.SetOutputName(ctx, id, name) })
}

// UpdateCellInputNames replaces the inputs of a cell.
// On ErrUnknownInput the returned cell is in ERROR with no inputs; on
// ErrCycleDetected nothing changed.
func (e *Engine) UpdateCellInputNames(ctx context.Context, id string, names []string) (*domain.Cell, error) {
	return e.mutate(id, func() error { return e.runtime.SetInputNames(ctx, id, names) })
}

// UpdateCellLanguage changes the language tag and expires the cell's descendants.
func (e *Engine) UpdateCellLanguage(ctx context.Context, id string, lang domain.Language) (*domain.Cell, error) {
	return e.mutate(id, func() error { return e.runtime.SetLanguage(ctx, id, lang) })
}

// ClearCell expires a cell and all of its descendants.
func (e *Engine) ClearCell(ctx context.Context, id string) (*domain.Cell, error) {
	return e.mutate(id, func() error { return e.runtime.ClearCell(ctx, id) })
}

// RunCell brings a cell up to date, running stale ancestors first and
// fresh descendants afterwards. The error describes the target cell; the
// state of every other touched cell is in the notebook.
func (e *Engine) RunCell(ctx context.Context, id string) (*domain.Cell, error) {
	return e.mutate(id, func() error { return e.runtime.RunCell(ctx, id) })
}

// RunAll runs every cell that is not OK.
func (e *Engine) RunAll(ctx context.Context) error {
	return e.commit(func() error { return e.runtime.RunAll(ctx) })
}

// mutate runs a cell command and returns a copy of the cell afterwards,
// together with the command's error. Commands that failed on a missing id
// return no cell.
func (e *Engine) mutate(id string, fn func() error) (*domain.Cell, error) {
	err := e.commit(fn)
	c, lookupErr := e.runtime.Cell(id)
	if lookupErr != nil {
		return nil, lookupErr
	}
	return c.Clone(), err
}

// commit runs a command and moves Updated only when the document changed.
// Rejected commands such as a cycle leave it untouched.
func (e *Engine) commit(fn func() error) error {
	before := e.runtime.Notebook().Snapshot()
	err := fn()
	if domain.Diff(before, e.runtime.Notebook()) != nil {
		e.touch()
	}
	return err
}

func (e *Engine) touch() {
	e.runtime.Notebook().Touch(e.now())
}
