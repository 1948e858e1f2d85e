package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/credential"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/httpx"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// CredentialHandler drives the credential reset flow.
type CredentialHandler struct {
	flows *credential.Manager
	log   zerolog.Logger
}

func NewCredentialHandler(flows *credential.Manager, log zerolog.Logger) *CredentialHandler {
	return &CredentialHandler{flows: flows, log: log}
}

type credentialRequest struct {
	Token    string `json:"token" schema:"token"`
	Email    string `json:"email" schema:"email"`
	Code     string `json:"code" schema:"code"`
	Password string `json:"password" schema:"password"`
}

// Start opens a flow, or resubmits the identity when token names a flow sent back to
// collecting_identity.
func (h *CredentialHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Malformed(w)
		return
	}
	if req.Email == "" {
		httpx.WriteResult(w, validation.Invalid[any](validation.Violations{"email": {"email is required"}}, ""))
		return
	}
	var (
		f   credential.Flow
		err error
	)
	if req.Token != "" {
		f, err = h.flows.Identify(r.Context(), req.Token, req.Email)
	} else {
		f, err = h.flows.Start(r.Context(), req.Email)
	}
	h.write(w, f, err, "If the address is registered, a verification code was sent.")
}

func (h *CredentialHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Malformed(w)
		return
	}
	f, err := h.flows.Verify(r.Context(), req.Token, req.Code)
	h.write(w, f, err, "Code verified.")
}

func (h *CredentialHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Malformed(w)
		return
	}
	f, err := h.flows.Complete(r.Context(), req.Token, req.Password)
	h.write(w, f, err, "Password updated.")
}

func (h *CredentialHandler) write(w http.ResponseWriter, f credential.Flow, err error, message string) {
	switch {
	case err == nil:
		httpx.WriteResult(w, validation.OK(f, message))
	case errors.Is(err, credential.ErrFlowNotFound):
		httpx.WriteResult(w, validation.NotFound[credential.Flow]("Reset flow not found."))
	case errors.Is(err, credential.ErrInvalidTransition):
		res := validation.State[credential.Flow]("This step is not available right now.")
		res.Data = f
		httpx.WriteResult(w, res)
	case errors.Is(err, credential.ErrWeakPassword):
		httpx.WriteResult(w, flowInvalid(f, "password", err))
	case errors.Is(err, credential.ErrInvalidCode), errors.Is(err, credential.ErrCodeExpired), errors.Is(err, credential.ErrTooManyAttempts):
		httpx.WriteResult(w, flowInvalid(f, "code", err))
	default:
		h.log.Error().Err(err).Msg("credential flow")
		httpx.WriteResult(w, validation.Failed[credential.Flow]())
	}
}

// flowInvalid reports err on field and still returns the flow so the caller sees its state.
func flowInvalid(f credential.Flow, field string, err error) validation.Result[credential.Flow] {
	msg, _ := strings.CutPrefix(err.Error(), "credential: ")
	res := validation.Invalid[credential.Flow](validation.Violations{field: {msg}}, "")
	res.Data = f
	return res
}
