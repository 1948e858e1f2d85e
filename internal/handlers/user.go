package handlers

import (
	"net/http"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/httpx"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
)

// UserHandler manages the users of one merchant.
type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.List(r.Context(), merchantID(r)))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Get(r.Context(), merchantID(r), r.PathValue("id")))
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.UserRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Malformed(w)
		return
	}
	httpx.WriteCreated(w, h.svc.Create(r.Context(), merchantID(r), req))
}
