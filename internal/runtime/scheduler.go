package runtime

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/aretw0/cado/pkg/domain"
)

// runState is shared by every cell touched during one top-level call.
// visited holds cells whose attempt is final for this call; active holds
// the cells currently on the recursion stack.
type runState struct {
	visited map[string]bool
	active  map[string]bool
}

func newRunState() *runState {
	return &runState{
		visited: make(map[string]bool),
		active:  make(map[string]bool),
	}
}

// RunCell brings the cell up to date: stale ancestors run first, then the
// cell itself, then every descendant reachable through cells that end OK.
// Each cell is evaluated at most once per call.
//
// The returned error describes the target cell only. Descendant failures
// are visible in their status. Cancellation of ctx is always returned.
func (e *Engine) RunCell(ctx context.Context, id string) error {
	c, err := e.Cell(id)
	if err != nil {
		return err
	}
	if c.Status == domain.StatusRunning {
		return &domain.CellError{CellID: c.ID, Err: domain.ErrCellRunning}
	}
	return e.run(ctx, c, newRunState())
}

// RunAll runs every stale cell in notebook order, sharing one run state
// so that no cell is evaluated twice. Failures are joined.
func (e *Engine) RunAll(ctx context.Context) error {
	st := newRunState()
	var errs []error
	for _, c := range slices.Clone(e.nb.Cells) {
		if st.visited[c.ID] || c.Status == domain.StatusOK {
			continue
		}
		if err := e.run(ctx, c, st); err != nil {
			if ctx.Err() != nil {
				return errors.Join(append(errs, err)...)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) run(ctx context.Context, c *domain.Cell, st *runState) error {
	if st.visited[c.ID] || st.active[c.ID] {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	st.active[c.ID] = true

	if missing := e.Unresolved(c); len(missing) > 0 {
		uerr := &domain.UnknownInputError{CellID: c.ID, Name: missing[0]}
		c.Fail(uerr.Error())
		e.finish(st, c)
		return uerr
	}

	parents := e.ParentsOf(c)
	for _, p := range parents {
		if !stale(p) || st.visited[p.ID] || st.active[p.ID] {
			continue
		}
		if err := e.run(ctx, p, st); err != nil && ctx.Err() != nil {
			delete(st.active, c.ID)
			return err
		}
	}

	for _, p := range parents {
		if st.active[p.ID] {
			// A parent is still resolving further up the stack. Its child
			// cascade reaches this cell again once it settles.
			delete(st.active, c.ID)
			return nil
		}
	}
	for _, p := range parents {
		if p.Status != domain.StatusOK {
			e.logger.Debug("parent not ok", "cell_id", c.ID, "parent", p.ID, "status", p.Status)
			e.finish(st, c)
			return &domain.CellError{CellID: c.ID, Err: domain.ErrParentError}
		}
	}

	runErr := e.evaluate(ctx, c, parents)
	e.finish(st, c)
	if runErr != nil {
		return runErr
	}

	for _, child := range e.ChildrenOf(c) {
		if st.visited[child.ID] || st.active[child.ID] {
			continue
		}
		if err := e.run(ctx, child, st); err != nil && ctx.Err() != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) finish(st *runState, c *domain.Cell) {
	delete(st.active, c.ID)
	st.visited[c.ID] = true
}

// evaluate performs the single evaluator call for c and records the outcome.
func (e *Engine) evaluate(ctx context.Context, c *domain.Cell, parents []*domain.Cell) error {
	if strings.TrimSpace(c.Code) == "" {
		c.Fail(domain.ErrEmptyCode.Error())
		return &domain.CellError{CellID: c.ID, Err: domain.ErrEmptyCode}
	}

	bindings := make(map[string]any, len(parents))
	for _, p := range parents {
		bindings[p.OutputName] = p.Output
	}

	c.Expire()
	c.Status = domain.StatusRunning
	if e.hooks.OnCellStart != nil {
		e.hooks.OnCellStart(ctx, e.event(domain.EventCellStart, c))
	}

	evalCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := e.now()
	res, err := e.evaluator.Evaluate(evalCtx, domain.EvalRequest{
		CellID:   c.ID,
		Language: c.Language,
		Code:     c.Code,
		Bindings: bindings,
	})
	elapsed := e.now().Sub(start)

	runErr := e.record(ctx, evalCtx, c, res, err)

	e.logger.Debug("cell evaluated", "cell_id", c.ID, "status", c.Status, "duration", elapsed)
	if e.hooks.OnCellFinish != nil {
		ev := e.event(domain.EventCellFinish, c)
		ev.Duration = elapsed
		ev.Err = runErr
		e.hooks.OnCellFinish(ctx, ev)
	}
	return runErr
}

// record applies the evaluator outcome to c and returns the cell's error.
// A result that came back without error is kept even if a deadline fired
// after the evaluator returned.
func (e *Engine) record(ctx, evalCtx context.Context, c *domain.Cell, res domain.EvalResult, err error) error {
	if err != nil {
		switch {
		case ctx.Err() != nil:
			c.Expire()
			return ctx.Err()
		case errors.Is(evalCtx.Err(), context.DeadlineExceeded):
			c.Fail(domain.ErrTimeout.Error())
			c.Stdout, c.Stderr = res.Stdout, res.Stderr
			return &domain.CellError{CellID: c.ID, Err: domain.ErrTimeout}
		default:
			c.Fail(err.Error())
			c.Stdout = res.Stdout
			c.Stderr = err.Error()
			return &domain.EvaluationError{CellID: c.ID, Message: err.Error()}
		}
	}

	if c.HasOutput() {
		out, ok := res.Outputs[c.OutputName]
		if !ok {
			c.Fail(domain.ErrMissingOutput.Error())
			c.Stdout, c.Stderr = res.Stdout, res.Stderr
			return &domain.CellError{CellID: c.ID, Err: domain.ErrMissingOutput}
		}
		c.Output = out
	}
	c.Status = domain.StatusOK
	c.Stdout, c.Stderr = res.Stdout, res.Stderr
	c.Error = ""
	return nil
}

func stale(c *domain.Cell) bool {
	return c.Status == domain.StatusExpired || c.Status == domain.StatusError
}
