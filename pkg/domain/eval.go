package domain

// EvalRequest asks an evaluator to execute one cell's code.
type EvalRequest struct {
	CellID   string         `json:"cell_id"`
	Language Language       `json:"language"`
	Code     string         `json:"code"`
	Bindings map[string]any `json:"bindings"` // Parent output name -> cached output
}

// EvalResult is a successful evaluation: named output bindings plus captured text.
type EvalResult struct {
	Outputs map[string]any `json:"outputs"`
	Stdout  string         `json:"stdout,omitempty"`
	Stderr  string         `json:"stderr,omitempty"`
}
