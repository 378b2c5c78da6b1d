package protocol

import (
	"context"
	"fmt"

	"github.com/aretw0/cado"
	"github.com/aretw0/cado/pkg/domain"
)

// Apply executes a notebook command against the engine.
// Session-level commands (listing, creating, opening and deleting notebooks)
// are not notebook commands and fail with ErrInvalidMessage.
func Apply(ctx context.Context, eng *cado.Engine, cmd Command) error {
	var err error
	switch c := cmd.(type) {
	case *GetNotebook:
	case *UpdateCellCode:
		_, err = eng.SetCellCode(ctx, c.CellID, c.Code)
	case *UpdateCellOutputName:
		_, err = eng.UpdateCellOutputName(ctx, c.CellID, c.OutputName)
	case *UpdateCellInputNames:
		_, err = eng.UpdateCellInputNames(ctx, c.CellID, c.InputNames)
	case *UpdateCellLanguage:
		_, err = eng.UpdateCellLanguage(ctx, c.CellID, domain.Language(c.Language))
	case *RunCell:
		_, err = eng.RunCell(ctx, c.CellID)
	case *RunAll:
		err = eng.RunAll(ctx)
	case *ClearCell:
		_, err = eng.ClearCell(ctx, c.CellID)
	case *NewCell:
		eng.AddCell(c.Index)
	case *DeleteCell:
		err = eng.DeleteCell(c.CellID)
	case *ReorderCells:
		err = eng.ReorderCells(c.CellIDs)
	case *UpdateNotebookName:
		eng.UpdateNotebookName(c.Name)
	default:
		err = fmt.Errorf("%w: %s is not a notebook command", ErrInvalidMessage, cmd.Type())
	}
	return err
}

// Dispatch applies cmd and answers with the resulting notebook.
func Dispatch(ctx context.Context, eng *cado.Engine, cmd Command) Response {
	if err := Apply(ctx, eng, cmd); err != nil {
		return ErrorResponse(err, eng.Notebook())
	}
	return NotebookResponse(eng.Notebook())
}
