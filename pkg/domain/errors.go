package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a cell id does not exist in the notebook.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateOutputName is returned when an output name is already declared by another cell.
	ErrDuplicateOutputName = errors.New("duplicate output name")

	// ErrUnknownInput is returned when an input name matches no cell's output name.
	ErrUnknownInput = errors.New("unknown input")

	// ErrCycleDetected is returned when an input assignment would make the graph cyclic.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrInvalidReorder is returned when a reorder list is not a permutation of the cell ids.
	ErrInvalidReorder = errors.New("invalid reorder")

	// ErrEmptyCode is returned when running a cell that has no code.
	ErrEmptyCode = errors.New("empty code")

	// ErrEvaluation is returned when the evaluator fails.
	ErrEvaluation = errors.New("evaluation error")

	// ErrMissingOutput is returned when the evaluator result lacks the declared output name.
	ErrMissingOutput = errors.New("missing output")

	// ErrParentError is returned when a cell cannot run because a parent ended in ERROR.
	ErrParentError = errors.New("parent error")

	// ErrUnsupportedVersion is returned when loading a document with another schema version.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrTimeout is returned when an evaluation exceeds the configured deadline.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrCellRunning is returned when a run is requested for a cell whose evaluation is in progress.
	ErrCellRunning = errors.New("cell is running")

	// ErrNotebookNotFound is returned when a notebook id cannot be found in the store.
	ErrNotebookNotFound = errors.New("notebook not found")
)

// CellError ties a failure to the cell it concerns.
type CellError struct {
	CellID string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell %s: %v", e.CellID, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// UnknownInputError reports the first input name that did not resolve.
type UnknownInputError struct {
	CellID string
	Name   string
}

func (e *UnknownInputError) Error() string {
	return fmt.Sprintf("cell %s: %v %q", e.CellID, ErrUnknownInput, e.Name)
}

func (e *UnknownInputError) Unwrap() error { return ErrUnknownInput }

// EvaluationError carries the evaluator's human-readable failure message.
type EvaluationError struct {
	CellID  string
	Message string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cell %s: %v: %s", e.CellID, ErrEvaluation, e.Message)
}

func (e *EvaluationError) Unwrap() error { return ErrEvaluation }

// VersionError reports a schema version mismatch on load.
type VersionError struct {
	Got  int
	Want int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%v: got %d, want %d", ErrUnsupportedVersion, e.Got, e.Want)
}

func (e *VersionError) Unwrap() error { return ErrUnsupportedVersion }

// NotFound builds the error returned for a missing cell id.
func NotFound(cellID string) error {
	return &CellError{CellID: cellID, Err: ErrNotFound}
}

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrNotFound, "not_found"},
	{ErrNotebookNotFound, "notebook_not_found"},
	{ErrDuplicateOutputName, "duplicate_output_name"},
	{ErrUnknownInput, "unknown_input"},
	{ErrCycleDetected, "cycle_detected"},
	{ErrInvalidReorder, "invalid_reorder"},
	{ErrEmptyCode, "empty_code"},
	{ErrEvaluation, "evaluation_error"},
	{ErrMissingOutput, "missing_output"},
	{ErrParentError, "parent_error"},
	{ErrUnsupportedVersion, "unsupported_version"},
	{ErrTimeout, "timeout"},
	{ErrCellRunning, "cell_running"},
}

// ErrorKind returns a stable machine-readable code for err, or "internal"
// when err is not part of the engine's taxonomy.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
