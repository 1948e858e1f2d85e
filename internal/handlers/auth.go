package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/auth"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/httpx"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/policy"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

type AuthHandler struct {
	users    *services.UserService
	sessions *auth.Sessions
	access   *policy.Access
	log      zerolog.Logger
}

func NewAuthHandler(users *services.UserService, sessions *auth.Sessions, access *policy.Access, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, access: access, log: log}
}

type loginRequest struct {
	Email    string `json:"email" schema:"email"`
	Password string `json:"password" schema:"password"`
}

type session struct {
	Token     string         `json:"token"`
	Principal auth.Principal `json:"principal"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Malformed(w)
		return
	}
	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		httpx.JSON(w, http.StatusUnauthorized, validation.Result[any]{Message: "Invalid email or password.", Outcome: validation.OutcomeInvalid})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("login failed")
		httpx.WriteResult(w, validation.Failed[any]())
		return
	}

	p := auth.Principal{UserID: u.ID, MerchantID: u.MerchantID, Role: u.Role}
	token, err := h.sessions.Issue(p)
	if err != nil {
		h.log.Error().Err(err).Msg("issue session")
		httpx.WriteResult(w, validation.Failed[any]())
		return
	}
	// a fresh login always sees the current role
	h.access.InvalidateUser(p)
	h.sessions.SetCookie(w, token)
	h.log.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("user logged in")
	httpx.WriteResult(w, validation.OK(session{Token: token, Principal: p}, "Logged in."))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w)
	httpx.WriteResult(w, validation.OK[any](nil, "Logged out."))
}

// Capabilities lists the actions the caller may offer. ?merchantId= narrows the answer to
// one merchant's resources.
func (h *AuthHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	caps := h.access.Capabilities(r.Context(), p, r.URL.Query().Get("merchantId"))
	httpx.WriteResult(w, validation.OK(caps, ""))
}
