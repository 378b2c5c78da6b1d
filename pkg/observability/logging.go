package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cado/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured record per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCellStart: func(ctx context.Context, e *domain.CellEvent) {
			logger.DebugContext(ctx, "cell_start",
				"notebook", e.NotebookID,
				"cell", e.CellID,
				"language", e.Language,
			)
		},
		OnCellFinish: func(ctx context.Context, e *domain.CellEvent) {
			attrs := []any{
				"notebook", e.NotebookID,
				"cell", e.CellID,
				"status", e.Status,
				"duration", e.Duration,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "cell_finish", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "cell_finish", attrs...)
		},
		OnCellCleared: func(ctx context.Context, e *domain.CellEvent) {
			logger.DebugContext(ctx, "cell_cleared", "notebook", e.NotebookID, "cell", e.CellID)
		},
	}
}
