package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inspectroom/internal/auth"
	"inspectroom/internal/inspection"
	"inspectroom/internal/session"
	"inspectroom/internal/store"
)

// canAccess reports whether the caller may take part in the inspection:
// guests only in the one they joined, inspectors only in their own.
func canAccess(c auth.Claims, rep inspection.Report) bool {
	if c.Guest {
		return c.ReportID == rep.ID
	}
	return c.Role == inspection.RoleInspector && rep.ScheduledByID == c.Subject
}

type draftFoundRes struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	ReportID string `json:"reportId"`
}

// OpenSession starts (or joins) the live session for an inspection. When a
// draft is cached the caller must say ?draft=keep or ?draft=discard.
func OpenSession(reports *store.ReportStore, m *session.Manager, au Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		decision, err := session.ParseDecision(r.URL.Query().Get("draft"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		c := auth.FromContext(r.Context())
		rep, err := reports.Get(r.Context(), id)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if !canAccess(c, rep) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		s, err := m.Open(r.Context(), id, decision)
		if errors.Is(err, session.ErrDraftDecisionRequired) {
			respondStatus(w, http.StatusConflict, draftFoundRes{
				Error:    "draft_found",
				Message:  "You have an unsaved draft for this inspection. Keep it or discard it?",
				ReportID: id,
			})
			return
		}
		if err != nil {
			respondError(w, lg, err)
			return
		}
		v := s.View()
		audit(r.Context(), au, lg, c.Subject, id, "session.open", map[string]any{"source": v.Source, "decision": decision})
		respondJSON(w, v)
	}
}

type liveHandler func(w http.ResponseWriter, r *http.Request, s *session.Session)

// live resolves the open session named by {id} and checks the caller may use it.
func live(m *session.Manager, lg *zap.SugaredLogger, next liveHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Get(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if !canAccess(auth.FromContext(r.Context()), s.Report()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next(w, r, s)
	}
}

func respondReport(w http.ResponseWriter, lg *zap.SugaredLogger, rep inspection.Report, err error) {
	if err != nil {
		respondError(w, lg, err)
		return
	}
	respondJSON(w, rep)
}

func GetSession(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		respondJSON(w, s.View())
	})
}

// ExitSession ends the live session; the draft stays cached.
func ExitSession(m *session.Manager, au Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		id := chi.URLParam(r, "id")
		m.Close(id)
		audit(r.Context(), au, lg, auth.Subject(r.Context()), id, "session.exit", nil)
		respondJSON(w, map[string]any{"closed": true})
	})
}

func SessionSummary(m *session.Manager, required []inspection.Role, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		respondJSON(w, s.Summary(required))
	})
}

// TakeNotices returns pending notices and clears them.
func TakeNotices(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		respondJSON(w, s.TakeNotices())
	})
}

func pathInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil
}
