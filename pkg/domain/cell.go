package domain

import "github.com/google/uuid"

// CellStatus is the position of a cell in the staleness state machine.
type CellStatus string

const (
	StatusExpired CellStatus = "expired" // Cached output is stale (or absent) and must be recomputed
	StatusRunning CellStatus = "running" // Evaluator call in progress; never persisted
	StatusOK      CellStatus = "ok"      // Output is valid
	StatusError   CellStatus = "error"   // Last attempt failed or configuration is invalid
)

// Language tags the code of a cell so the host can pick an evaluator.
type Language string

const (
	LanguageHCL    Language = "hcl"
	LanguagePython Language = "python"
	LanguageShell  Language = "shell"
)

// DefaultLanguage is assigned to new cells.
const DefaultLanguage = LanguageHCL

// Value is an opaque unit produced by an evaluator.
// The engine stores and forwards values between cells without inspecting them.
type Value = any

// Cell is a unit of code with a declared output name and a set of input names.
type Cell struct {
	ID         string     `json:"id" yaml:"id"`
	Code       string     `json:"code" yaml:"code"`
	OutputName string     `json:"output_name" yaml:"output_name"`
	InputNames []string   `json:"input_names" yaml:"input_names"`
	Language   Language   `json:"language" yaml:"language"`
	Status     CellStatus `json:"status" yaml:"status"`

	// Output is present only when Status == StatusOK.
	Output Value `json:"output,omitempty" yaml:"output,omitempty"`

	Stdout string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty" yaml:"stderr,omitempty"`

	// Error holds the last failure message when Status == StatusError.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCell creates an empty, expired cell with a fresh identifier.
func NewCell() *Cell {
	return &Cell{
		ID:         uuid.NewString(),
		InputNames: []string{},
		Language:   DefaultLanguage,
		Status:     StatusExpired,
	}
}

// Expire moves the cell to EXPIRED and drops everything produced by the last run.
func (c *Cell) Expire() {
	c.Status = StatusExpired
	c.Output = nil
	c.Stdout = ""
	c.Stderr = ""
	c.Error = ""
}

// Fail moves the cell to ERROR with the given message.
// Captured stdout/stderr are left to the caller.
func (c *Cell) Fail(message string) {
	c.Status = StatusError
	c.Output = nil
	c.Error = message
}

// HasOutput reports whether other cells can depend on this one.
func (c *Cell) HasOutput() bool {
	return c.OutputName != ""
}

// DependsOn reports whether name is one of the cell's inputs.
func (c *Cell) DependsOn(name string) bool {
	if name == "" {
		return false
	}
	for _, in := range c.InputNames {
		if in == name {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with the receiver.
// Output is copied by reference: values are opaque and treated as immutable.
func (c *Cell) Clone() *Cell {
	if c == nil {
		return nil
	}
	cp := *c
	cp.InputNames = append([]string{}, c.InputNames...)
	return &cp
}
