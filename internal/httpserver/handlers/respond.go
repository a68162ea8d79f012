package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"inspectroom/internal/inspection"
	"inspectroom/internal/session"
	"inspectroom/internal/store"
	"inspectroom/internal/tasks"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	respondStatus(w, http.StatusOK, v)
}

func respondStatus(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondError maps domain errors onto status codes. Anything unrecognised
// is logged and reported as a 500 without leaking the cause.
func respondError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, store.ErrReportNotFound), errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, session.ErrNotOpen), errors.Is(err, tasks.ErrTaskNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrReportComplete), errors.Is(err, store.ErrUsernameTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, inspection.ErrInvalidToleranceType), errors.Is(err, inspection.ErrNegativeTolerance),
		errors.Is(err, session.ErrInvalidDecision), errors.Is(err, session.ErrInvalidFinalStatus),
		errors.Is(err, session.ErrInvalidRole), errors.Is(err, session.ErrNoGDTSymbol),
		errors.Is(err, session.ErrUnknownGDTSymbol), errors.Is(err, store.ErrInvalidRole),
		errors.Is(err, store.ErrTitleRequired), errors.Is(err, tasks.ErrEmptyTask):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		lg.Errorw("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// Auditor is the slice of the audit store the handlers write to.
type Auditor interface {
	Record(ctx context.Context, userID, reportID, action string, metadata any) error
}

func audit(ctx context.Context, a Auditor, lg *zap.SugaredLogger, userID, reportID, action string, meta any) {
	if err := a.Record(ctx, userID, reportID, action, meta); err != nil {
		lg.Warnw("audit write failed", "action", action, "error", err)
	}
}
