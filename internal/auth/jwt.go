package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inspectroom/internal/inspection"
)

var ErrInvalidToken = errors.New("invalid token")

type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration { return t.ttl }

// Sign issues an HS256 token for c. A fresh JWT id is assigned and returned
// in the resulting claims.
func (t *Tokens) Sign(c Claims) (string, Claims, time.Time, error) {
	c.JWTID = uuid.NewString()
	now := t.now()
	exp := now.Add(t.ttl)
	mc := jwt.MapClaims{
		"sub":  c.Subject,
		"role": string(c.Role),
		"jti":  c.JWTID,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	if c.Guest {
		mc["guest"] = true
		mc["rid"] = c.ReportID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	s, err := token.SignedString(t.key)
	return s, c, exp, err
}

func (t *Tokens) Verify(tokenStr string) (Claims, error) {
	tok, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(t.now))
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	c := Claims{}
	c.Subject, _ = mapc["sub"].(string)
	role, _ := mapc["role"].(string)
	c.Role = inspection.Role(role)
	c.JWTID, _ = mapc["jti"].(string)
	c.Guest, _ = mapc["guest"].(bool)
	c.ReportID, _ = mapc["rid"].(string)
	if c.Subject == "" || !c.Role.IsValid() {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}
