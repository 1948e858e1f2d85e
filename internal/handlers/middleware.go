package handlers

import (
	"net/http"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/auth"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
)

// WithActor passes the session's user id to the services, which record it as createdBy.
// It must run after auth.Sessions.Middleware.
func WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := auth.PrincipalFrom(r.Context()); ok {
			r = r.WithContext(services.WithActor(r.Context(), p.UserID))
		}
		next.ServeHTTP(w, r)
	})
}
