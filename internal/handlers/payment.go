package handlers

import (
	"net/http"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/httpx"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
)

type PaymentHandler struct {
	*ResourceHandler[models.Payment, services.PaymentRequest]
	svc *services.PaymentService
}

func NewPaymentHandler(svc *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		ResourceHandler: NewResourceHandler[models.Payment, services.PaymentRequest](svc),
		svc:             svc,
	}
}

func (h *PaymentHandler) Settle(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Settle(r.Context(), merchantID(r), r.PathValue("id")))
}

func (h *PaymentHandler) Fail(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Fail(r.Context(), merchantID(r), r.PathValue("id")))
}

func (h *PaymentHandler) Register(mux *http.ServeMux, prefix string) {
	h.ResourceHandler.Register(mux, prefix)
	mux.HandleFunc("POST "+prefix+"/{id}/settle", h.Settle)
	mux.HandleFunc("POST "+prefix+"/{id}/fail", h.Fail)
}
