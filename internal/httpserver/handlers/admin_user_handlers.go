package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"inspectroom/internal/auth"
	"inspectroom/internal/inspection"
	"inspectroom/internal/store"
)

func ListUsers(users *store.UserStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := users.List(r.Context())
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, all)
	}
}

func CreateUser(users *store.UserStore, au Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string          `json:"username"`
			Password string          `json:"password"`
			Role     inspection.Role `json:"role"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "username/password required", http.StatusBadRequest)
			return
		}
		u, err := users.Create(r.Context(), req.Username, req.Password, req.Role)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r.Context(), au, lg, auth.Subject(r.Context()), "", "user.create", map[string]any{"id": u.ID, "username": u.Username, "role": u.Role})
		respondStatus(w, http.StatusCreated, u)
	}
}
