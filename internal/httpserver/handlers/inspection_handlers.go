package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"inspectroom/internal/auth"
	"inspectroom/internal/inspection"
	"inspectroom/internal/store"
)

// ScheduleInspection creates an inspection assigned to an inspector.
func ScheduleInspection(users *store.UserStore, reports *store.ReportStore, au Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       string `json:"title"`
			InspectorID string `json:"inspectorId"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		u, err := users.Get(r.Context(), req.InspectorID)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if inspection.Role(u.Role) != inspection.RoleInspector {
			http.Error(w, "inspections can only be assigned to inspectors", http.StatusBadRequest)
			return
		}
		rep, err := reports.Create(r.Context(), req.Title, u.ID)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r.Context(), au, lg, auth.Subject(r.Context()), rep.ID, "inspection.schedule", map[string]any{"title": rep.Title, "inspector": u.Username})
		respondStatus(w, http.StatusCreated, rep)
	}
}

func ListInspections(reports *store.ReportStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := reports.ListAll(r.Context())
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, all)
	}
}

func MyInspections(reports *store.ReportStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mine, err := reports.ListByInspector(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, mine)
	}
}

func GDTSymbols() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, inspection.GDTSymbols)
	}
}
