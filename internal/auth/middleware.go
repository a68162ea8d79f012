package auth

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"inspectroom/internal/inspection"
	"inspectroom/internal/models"
)

// JWTAuth accepts bearer tokens whose session row exists and is neither
// revoked nor expired.
func JWTAuth(db *gorm.DB, tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(h, "Bearer ")
			claims, err := tokens.Verify(raw)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			var sess models.Session
			if claims.JWTID == "" || db.WithContext(r.Context()).First(&sess, "jti = ?", claims.JWTID).Error != nil {
				http.Error(w, "session not found", http.StatusUnauthorized)
				return
			}
			if sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) {
				http.Error(w, "session expired/revoked", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole admits callers holding any of roles.
func RequireRole(roles ...inspection.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !FromContext(r.Context()).HasRole(roles...) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IssueSession signs a token for c and records the backing session row.
func IssueSession(db *gorm.DB, tokens *Tokens, c Claims) (string, Claims, error) {
	tok, c, exp, err := tokens.Sign(c)
	if err != nil {
		return "", Claims{}, err
	}
	sess := models.Session{JTI: c.JWTID, UserID: c.Subject, Role: string(c.Role), ExpiresAt: exp, CreatedAt: time.Now()}
	if err := db.Create(&sess).Error; err != nil {
		return "", Claims{}, err
	}
	return tok, c, nil
}

// RevokeSession marks the session behind jti as revoked.
func RevokeSession(db *gorm.DB, jti string) error {
	now := time.Now()
	return db.Model(&models.Session{}).Where("jti = ? AND revoked_at IS NULL", jti).Update("revoked_at", &now).Error
}
