package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Type selects the command carried by a message.
type Type string

const (
	TypeGetNotebook          Type = "get-notebook"
	TypeUpdateCellCode       Type = "update-cell-code"
	TypeUpdateCellOutputName Type = "update-cell-output-name"
	TypeUpdateCellInputNames Type = "update-cell-input-names"
	TypeUpdateCellLanguage   Type = "update-cell-language"
	TypeRunCell              Type = "run-cell"
	TypeRunAll               Type = "run-all"
	TypeClearCell            Type = "clear-cell"
	TypeNewCell              Type = "new-cell"
	TypeDeleteCell           Type = "delete-cell"
	TypeReorderCells         Type = "reorder-cells"
	TypeUpdateNotebookName   Type = "update-notebook-name"
	TypeListNotebooks        Type = "list-notebooks"
	TypeNewNotebook          Type = "new-notebook"
	TypeOpenNotebook         Type = "open-notebook"
	TypeDeleteNotebook       Type = "delete-notebook"

	TypeGetNotebookResponse   Type = "get-notebook-response"
	TypeListNotebooksResponse Type = "list-notebooks-response"
	TypeErrorResponse         Type = "error-response"
)

var (
	// ErrUnknownType is returned when the "type" field names no command.
	ErrUnknownType = errors.New("unknown message type")

	// ErrInvalidMessage is returned when the fields do not match the command.
	ErrInvalidMessage = errors.New("invalid message")
)

// Command is a decoded request.
type Command interface {
	Type() Type
}

type GetNotebook struct{}

type UpdateCellCode struct {
	CellID string `mapstructure:"cell_id"`
	Code   string `mapstructure:"code"`
}

type UpdateCellOutputName struct {
	CellID     string `mapstructure:"cell_id"`
	OutputName string `mapstructure:"output_name"`
}

type UpdateCellInputNames struct {
	CellID     string   `mapstructure:"cell_id"`
	InputNames []string `mapstructure:"input_names"`
}

type UpdateCellLanguage struct {
	CellID   string `mapstructure:"cell_id"`
	Language string `mapstructure:"language"`
}

type RunCell struct {
	CellID string `mapstructure:"cell_id"`
}

type RunAll struct{}

type ClearCell struct {
	CellID string `mapstructure:"cell_id"`
}

// NewCell inserts a cell at Index, or appends when Index is absent.
type NewCell struct {
	Index *int `mapstructure:"index"`
}

type DeleteCell struct {
	CellID string `mapstructure:"cell_id"`
}

type ReorderCells struct {
	CellIDs []string `mapstructure:"cell_ids"`
}

type UpdateNotebookName struct {
	Name string `mapstructure:"name"`
}

type ListNotebooks struct{}

type NewNotebook struct {
	Name string `mapstructure:"name"`
}

type OpenNotebook struct {
	NotebookID string `mapstructure:"notebook_id"`
}

type DeleteNotebook struct {
	NotebookID string `mapstructure:"notebook_id"`
}

func (GetNotebook) Type() Type          { return TypeGetNotebook }
func (UpdateCellCode) Type() Type       { return TypeUpdateCellCode }
func (UpdateCellOutputName) Type() Type { return TypeUpdateCellOutputName }
func (UpdateCellInputNames) Type() Type { return TypeUpdateCellInputNames }
func (UpdateCellLanguage) Type() Type   { return TypeUpdateCellLanguage }
func (RunCell) Type() Type              { return TypeRunCell }
func (RunAll) Type() Type               { return TypeRunAll }
func (ClearCell) Type() Type            { return TypeClearCell }
func (NewCell) Type() Type              { return TypeNewCell }
func (DeleteCell) Type() Type           { return TypeDeleteCell }
func (ReorderCells) Type() Type         { return TypeReorderCells }
func (UpdateNotebookName) Type() Type   { return TypeUpdateNotebookName }
func (ListNotebooks) Type() Type        { return TypeListNotebooks }
func (NewNotebook) Type() Type          { return TypeNewNotebook }
func (OpenNotebook) Type() Type         { return TypeOpenNotebook }
func (DeleteNotebook) Type() Type       { return TypeDeleteNotebook }

var commands = map[Type]func() Command{
	TypeGetNotebook:          func() Command { return &GetNotebook{} },
	TypeUpdateCellCode:       func() Command { return &UpdateCellCode{} },
	TypeUpdateCellOutputName: func() Command { return &UpdateCellOutputName{} },
	TypeUpdateCellInputNames: func() Command { return &UpdateCellInputNames{} },
	TypeUpdateCellLanguage:   func() Command { return &UpdateCellLanguage{} },
	TypeRunCell:              func() Command { return &RunCell{} },
	TypeRunAll:               func() Command { return &RunAll{} },
	TypeClearCell:            func() Command { return &ClearCell{} },
	TypeNewCell:              func() Command { return &NewCell{} },
	TypeDeleteCell:           func() Command { return &DeleteCell{} },
	TypeReorderCells:         func() Command { return &ReorderCells{} },
	TypeUpdateNotebookName:   func() Command { return &UpdateNotebookName{} },
	TypeListNotebooks:        func() Command { return &ListNotebooks{} },
	TypeNewNotebook:          func() Command { return &NewNotebook{} },
	TypeOpenNotebook:         func() Command { return &OpenNotebook{} },
	TypeDeleteNotebook:       func() Command { return &DeleteNotebook{} },
}

// required lists the fields a command cannot do without.
var required = map[Type][]string{
	TypeUpdateCellCode:       {"cell_id", "code"},
	TypeUpdateCellOutputName: {"cell_id", "output_name"},
	TypeUpdateCellInputNames: {"cell_id", "input_names"},
	TypeUpdateCellLanguage:   {"cell_id", "language"},
	TypeRunCell:              {"cell_id"},
	TypeClearCell:            {"cell_id"},
	TypeDeleteCell:           {"cell_id"},
	TypeReorderCells:         {"cell_ids"},
	TypeUpdateNotebookName:   {"name"},
	TypeOpenNotebook:         {"notebook_id"},
	TypeDeleteNotebook:       {"notebook_id"},
}

// Parse decodes a JSON message.
func Parse(data []byte) (Command, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return Decode(raw)
}

// Decode builds the command selected by raw["type"] from the remaining fields.
// Unknown fields are rejected.
func Decode(raw map[string]any) (Command, error) {
	t, _ := raw["type"].(string)
	factory, ok := commands[Type(t)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k != "type" {
			fields[k] = v
		}
	}
	var missing []string
	for _, name := range required[Type(t)] {
		if v, ok := fields[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s requires %s", ErrInvalidMessage, t, strings.Join(missing, ", "))
	}

	cmd := factory()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      cmd,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, t, err)
	}
	return cmd, nil
}

// Response is the reply to a command.
type Response struct {
	Type     Type                     `json:"type"`
	Notebook *domain.Notebook         `json:"notebook,omitempty"`
	Details  []domain.NotebookDetails `json:"notebook_details,omitempty"`
	Error    string                   `json:"error,omitempty"`
	Kind     string                   `json:"kind,omitempty"`
}

// NotebookResponse wraps a notebook in a get-notebook-response.
func NotebookResponse(nb *domain.Notebook) Response {
	return Response{Type: TypeGetNotebookResponse, Notebook: nb}
}

// ErrorResponse reports err. nb may be nil.
func ErrorResponse(err error, nb *domain.Notebook) Response {
	return Response{
		Type:     TypeErrorResponse,
		Notebook: nb,
		Error:    err.Error(),
		Kind:     Kind(err),
	}
}

// Kind extends domain.ErrorKind with the decoding failures of this package.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, ErrInvalidMessage):
		return "invalid_message"
	}
	return domain.ErrorKind(err)
}
