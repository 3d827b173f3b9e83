package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/loolazoola/epl-sub001/internal/usecase"
)

const syncDateLayout = "2006-01-02"

type runSyncMatchesRequest struct {
	DateFrom string `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

// RunSyncMatchesJob pulls the current match window from the external feed
// and reconciles it into storage. The body is optional; without it the
// feed client falls back to its default window.
func (h *Handler) RunSyncMatchesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncMatchesJob")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: match sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeRunSyncMatchesRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.syncService.SyncMatchData(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync matches job failed", "date_from", req.DateFrom, "date_to", req.DateTo, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// RunProcessScoresJob scores every finished match with unprocessed
// predictions and invalidates cached leaderboards afterwards.
func (h *Handler) RunProcessScoresJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunProcessScoresJob")
	defer span.End()

	if h.processingService == nil {
		writeError(ctx, w, fmt.Errorf("%w: score processing service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.processingService.ProcessAllFinishedMatches(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run process scores job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	if h.leaderboardService != nil && result.TotalPredictionsProcessed > 0 {
		h.leaderboardService.Invalidate(ctx)
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func decodeRunSyncMatchesRequest(r *http.Request) (runSyncMatchesRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req runSyncMatchesRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return runSyncMatchesRequest{}, nil
		}
		return runSyncMatchesRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

func (req runSyncMatchesRequest) toInput() (usecase.SyncInput, error) {
	var input usecase.SyncInput

	if req.DateFrom != "" {
		from, err := time.Parse(syncDateLayout, req.DateFrom)
		if err != nil {
			return usecase.SyncInput{}, fmt.Errorf("%w: invalid date_from: %v", usecase.ErrInvalidInput, err)
		}
		input.DateFrom = from
	}
	if req.DateTo != "" {
		to, err := time.Parse(syncDateLayout, req.DateTo)
		if err != nil {
			return usecase.SyncInput{}, fmt.Errorf("%w: invalid date_to: %v", usecase.ErrInvalidInput, err)
		}
		input.DateTo = to
	}
	if !input.DateFrom.IsZero() && !input.DateTo.IsZero() && input.DateTo.Before(input.DateFrom) {
		return usecase.SyncInput{}, fmt.Errorf("%w: date_to is before date_from", usecase.ErrInvalidInput)
	}

	return input, nil
}
