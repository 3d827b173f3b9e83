package httpapi

import (
	"fmt"
	"net/http"

	"github.com/loolazoola/epl-sub001/internal/usecase"
)

type statusDTO struct {
	Stats          usecase.ProcessingStats `json:"stats"`
	HasUnprocessed bool                    `json:"has_unprocessed_matches"`
	Runs           usecase.StatusSnapshot  `json:"runs"`
}

// GetStatus reports repository-backed processing counts plus the
// process-local run counters kept since startup.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatus")
	defer span.End()

	if h.processingService == nil {
		writeError(ctx, w, fmt.Errorf("%w: score processing service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	stats, err := h.processingService.GetProcessingStats(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get processing stats failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	hasUnprocessed, err := h.processingService.HasUnprocessedMatches(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "check unprocessed matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statusDTO{
		Stats:          stats,
		HasUnprocessed: hasUnprocessed,
		Runs:           h.statusCache.Snapshot(),
	})
}
