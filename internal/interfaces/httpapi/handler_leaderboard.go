package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/loolazoola/epl-sub001/internal/usecase"
)

// GetLeaderboard returns ranked users. The optional limit query parameter
// is clamped by the service; zero means the default page size.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	if h.leaderboardService == nil {
		writeError(ctx, w, fmt.Errorf("%w: leaderboard service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	entries, err := h.leaderboardService.Leaderboard(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "limit", limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, entries)
}
