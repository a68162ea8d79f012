package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"inspectroom/internal/auth"
	"inspectroom/internal/inspection"
	"inspectroom/internal/store"
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenRes struct {
	Token string          `json:"token"`
	User  map[string]any  `json:"user"`
	Role  inspection.Role `json:"role"`
}

// Login issues a token for administrators and inspectors. Everyone else
// joins an inspection through its link.
func Login(db *gorm.DB, users *store.UserStore, tokens *auth.Tokens, au Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		u, err := users.Authenticate(r.Context(), req.Username, req.Password)
		if errors.Is(err, store.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err != nil {
			respondError(w, lg, err)
			return
		}
		role := inspection.Role(u.Role)
		if role != inspection.RoleAdmin && role != inspection.RoleInspector {
			http.Error(w, "this role cannot log in directly; use an inspection link", http.StatusForbidden)
			return
		}
		tok, _, err := auth.IssueSession(db, tokens, auth.Claims{Subject: u.ID, Role: role})
		if err != nil {
			lg.Errorw("issue session failed", "user", u.ID, "error", err)
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}
		audit(r.Context(), au, lg, u.ID, "", "login", map[string]any{"username": u.Username})
		respondJSON(w, tokenRes{Token: tok, Role: role, User: map[string]any{"id": u.ID, "username": u.Username, "role": role}})
	}
}

type joinReq struct {
	Name string          `json:"name"`
	Role inspection.Role `json:"role"`
}

// Join gives a participant a token scoped to one inspection.
func Join(db *gorm.DB, reports *store.ReportStore, tokens *auth.Tokens, au Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req joinReq
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Role = inspection.Role(strings.ToUpper(string(req.Role)))
		// Administrators and inspectors log in; a link never grants their roles.
		if !req.Role.IsValid() || req.Role == inspection.RoleAdmin || req.Role == inspection.RoleInspector {
			http.Error(w, "role must be a participant role (supervisor, customer or quality engineer)", http.StatusBadRequest)
			return
		}
		if _, err := reports.Get(r.Context(), id); err != nil {
			respondError(w, lg, err)
			return
		}
		c := auth.Claims{Subject: "guest-" + uuid.NewString(), Role: req.Role, Guest: true, ReportID: id}
		tok, c, err := auth.IssueSession(db, tokens, c)
		if err != nil {
			lg.Errorw("issue guest session failed", "report", id, "error", err)
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}
		audit(r.Context(), au, lg, c.Subject, id, "join", map[string]any{"name": strings.TrimSpace(req.Name), "role": req.Role})
		respondJSON(w, tokenRes{Token: tok, Role: req.Role, User: map[string]any{"id": c.Subject, "name": strings.TrimSpace(req.Name), "role": req.Role, "reportId": id}})
	}
}

func Me(users *store.UserStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := auth.FromContext(r.Context())
		if c.Guest {
			respondJSON(w, map[string]any{"id": c.Subject, "role": c.Role, "guest": true, "reportId": c.ReportID})
			return
		}
		u, err := users.Get(r.Context(), c.Subject)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, u)
	}
}

func Logout(db *gorm.DB, au Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := auth.FromContext(r.Context())
		if err := auth.RevokeSession(db, c.JWTID); err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r.Context(), au, lg, c.Subject, c.ReportID, "logout", nil)
		respondJSON(w, map[string]any{"ok": true})
	}
}
