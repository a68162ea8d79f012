package auth

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"inspectroom/internal/inspection"
)

type ctxKey string

const (
	userKey ctxKey = "userClaims"
)

type Claims struct {
	Subject string
	Role    inspection.Role
	JWTID   string
	// Guest is set for participants who joined through an inspection link
	// rather than logging in.
	Guest    bool
	ReportID string
}

func (c Claims) HasRole(roles ...inspection.Role) bool {
	return mapset.NewSet(roles...).Contains(c.Role)
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, userKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(userKey).(Claims); ok {
		return v
	}
	return Claims{}
}

func Subject(ctx context.Context) string {
	return FromContext(ctx).Subject
}
