package handlers

import (
	"net/http"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/billing"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/httpx"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

type DashboardHandler struct {
	svc   *services.DashboardService
	taxes *billing.TaxTable
}

func NewDashboardHandler(svc *services.DashboardService, taxes *billing.TaxTable) *DashboardHandler {
	return &DashboardHandler{svc: svc, taxes: taxes}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Summary(r.Context(), merchantID(r)))
}

// Taxes lists the tax table.
func (h *DashboardHandler) Taxes(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, validation.OK(h.taxes.All(), ""))
}
