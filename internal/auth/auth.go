// Package auth issues and reads session tokens. Sessions only identify the caller:
// nothing in the request path is refused because of them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
)

type ctxKey string

const (
	sessionCookieName = "session"
	principalCtxKey   = ctxKey("principal")
)

// ErrInvalidToken is returned for tokens that are malformed, forged or expired.
var ErrInvalidToken = errors.New("auth: invalid session token")

// Principal identifies the caller of a request.
type Principal struct {
	UserID     string      `json:"userId"`
	MerchantID string      `json:"merchantId,omitempty"`
	Role       models.Role `json:"role"`
}

// IsOperator reports whether the principal acts on the operator portal.
func (p Principal) IsOperator() bool { return p.Role == models.RoleOperator }

// Claims is the JWT payload of a session token.
type Claims struct {
	MerchantID string      `json:"mid,omitempty"`
	Role       models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Sessions signs tokens with an HMAC secret.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions returns a token issuer; tokens expire after ttl.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the time source.
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

// TTL returns the token lifetime.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue returns a signed HS256 token for p.
func (s *Sessions) Issue(p Principal) (string, error) {
	now := s.now()
	claims := &Claims{
		MerchantID: p.MerchantID,
		Role:       p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its principal.
func (s *Sessions) Parse(token string) (Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Principal{UserID: claims.Subject, MerchantID: claims.MerchantID, Role: claims.Role}, nil
}

// FromRequest reads the session cookie, falling back to an "Authorization: Bearer" header.
func (s *Sessions) FromRequest(r *http.Request) (Principal, bool) {
	var token string
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		token = c.Value
	} else if h := r.Header.Get("Authorization"); h != "" {
		scheme, value, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return Principal{}, false
		}
		token = strings.TrimSpace(value)
	}
	if token == "" {
		return Principal{}, false
	}
	p, err := s.Parse(token)
	if err != nil {
		return Principal{}, false
	}
	return p, true
}

// SetCookie writes the session cookie.
func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.now().Add(s.ttl),
	})
}

// ClearCookie deletes the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFrom extracts the principal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	return p, ok
}

// Middleware attaches the principal to the request context if a valid session is present.
// Requests without one pass through unchanged.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := s.FromRequest(r); ok {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}
