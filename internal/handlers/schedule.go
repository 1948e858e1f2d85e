package handlers

import (
	"net/http"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/httpx"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
)

type ScheduleHandler struct {
	*ResourceHandler[models.AutoIssuanceSchedule, services.ScheduleRequest]
	svc *services.ScheduleService
}

func NewScheduleHandler(svc *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		ResourceHandler: NewResourceHandler[models.AutoIssuanceSchedule, services.ScheduleRequest](svc),
		svc:             svc,
	}
}

func (h *ScheduleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Activate(r.Context(), merchantID(r), r.PathValue("id")))
}

func (h *ScheduleHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Deactivate(r.Context(), merchantID(r), r.PathValue("id")))
}

// RunDue issues every due invoice across merchants. Operator route.
func (h *ScheduleHandler) RunDue(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.RunDue(r.Context()))
}

func (h *ScheduleHandler) Register(mux *http.ServeMux, prefix string) {
	h.ResourceHandler.Register(mux, prefix)
	mux.HandleFunc("POST "+prefix+"/{id}/activate", h.Activate)
	mux.HandleFunc("POST "+prefix+"/{id}/deactivate", h.Deactivate)
}
