package protocol

import (
	"context"

	"github.com/aretw0/cado"
	"github.com/aretw0/cado/pkg/session"
)

// Handler answers every message type on top of a session manager.
// Notebook commands run inside Manager.Do so that they are serialized and
// persisted.
type Handler struct {
	mgr *session.Manager
}

// NewHandler creates a Handler for the notebooks served by mgr.
func NewHandler(mgr *session.Manager) *Handler {
	return &Handler{mgr: mgr}
}

// Handle decodes raw and applies it. notebookID addresses notebook commands
// and is ignored by session-level ones.
func (h *Handler) Handle(ctx context.Context, notebookID string, raw map[string]any) Response {
	cmd, err := Decode(raw)
	if err != nil {
		return ErrorResponse(err, nil)
	}
	return h.Execute(ctx, notebookID, cmd)
}

// Execute applies an already decoded command.
func (h *Handler) Execute(ctx context.Context, notebookID string, cmd Command) Response {
	switch c := cmd.(type) {
	case *ListNotebooks:
		return h.list(ctx)
	case *NewNotebook:
		nb, err := h.mgr.Create(ctx, c.Name)
		if err != nil {
			return ErrorResponse(err, nil)
		}
		return NotebookResponse(nb)
	case *OpenNotebook:
		nb, err := h.mgr.Load(ctx, c.NotebookID)
		if err != nil {
			return ErrorResponse(err, nil)
		}
		return NotebookResponse(nb)
	case *DeleteNotebook:
		if err := h.mgr.Delete(ctx, c.NotebookID); err != nil {
			return ErrorResponse(err, nil)
		}
		return h.list(ctx)
	}

	nb, err := h.mgr.Do(ctx, notebookID, func(eng *cado.Engine) error {
		return Apply(ctx, eng, cmd)
	})
	if err != nil {
		return ErrorResponse(err, nb)
	}
	return NotebookResponse(nb)
}

func (h *Handler) list(ctx context.Context) Response {
	details, err := h.mgr.Details(ctx)
	if err != nil {
		return ErrorResponse(err, nil)
	}
	return Response{Type: TypeListNotebooksResponse, Details: details}
}
