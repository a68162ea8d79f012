package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"inspectroom/internal/auth"
	"inspectroom/internal/inspection"
	"inspectroom/internal/store"
)

// MyLogs returns recent audit entries for the caller. Administrators can
// pass ?all=1 to see everyone's.
func MyLogs(a *store.AuditStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := auth.FromContext(r.Context())
		uid := c.Subject
		if r.URL.Query().Get("all") == "1" && c.HasRole(inspection.RoleAdmin) {
			uid = ""
		}
		logs, err := a.Recent(r.Context(), uid)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, logs)
	}
}
