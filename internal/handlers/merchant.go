package handlers

import (
	"net/http"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/httpx"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
)

// MerchantHandler serves the operator portal's merchant administration.
type MerchantHandler struct {
	svc *services.MerchantService
}

func NewMerchantHandler(svc *services.MerchantService) *MerchantHandler {
	return &MerchantHandler{svc: svc}
}

func (h *MerchantHandler) List(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.List(r.Context()))
}

func (h *MerchantHandler) Get(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Get(r.Context(), r.PathValue("id")))
}

func (h *MerchantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.MerchantRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Malformed(w)
		return
	}
	httpx.WriteCreated(w, h.svc.Create(r.Context(), req))
}

func (h *MerchantHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.MerchantRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Malformed(w)
		return
	}
	httpx.WriteResult(w, h.svc.Update(r.Context(), r.PathValue("id"), req))
}

func (h *MerchantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Delete(r.Context(), r.PathValue("id")))
}

func (h *MerchantHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Suspend(r.Context(), r.PathValue("id")))
}

func (h *MerchantHandler) Activate(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Activate(r.Context(), r.PathValue("id")))
}
