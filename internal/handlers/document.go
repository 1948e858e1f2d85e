package handlers

import (
	"net/http"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/httpx"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
)

// DocumentHandler serves one document kind.
type DocumentHandler struct {
	*ResourceHandler[models.Document, services.DocumentRequest]
	svc *services.DocumentService
}

func NewDocumentHandler(svc *services.DocumentService) *DocumentHandler {
	h := &DocumentHandler{ResourceHandler: NewResourceHandler[models.Document, services.DocumentRequest](svc), svc: svc}
	h.decode = decodeDocument
	return h
}

// decodeDocument reads a document payload. In form payloads the items field carries the
// line items as a JSON array.
func decodeDocument(r *http.Request) (services.DocumentRequest, error) {
	var req services.DocumentRequest
	if err := httpx.Decode(r, &req); err != nil {
		return req, err
	}
	if !httpx.IsJSON(r) {
		if err := httpx.DecodeFormJSON(r, "items", &req.Items); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (h *DocumentHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req services.StatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Malformed(w)
		return
	}
	httpx.WriteResult(w, h.svc.ChangeStatus(r.Context(), merchantID(r), r.PathValue("id"), req))
}

// Convert turns an accepted quotation into a draft invoice.
func (h *DocumentHandler) Convert(w http.ResponseWriter, r *http.Request) {
	httpx.WriteCreated(w, h.svc.ConvertQuotation(r.Context(), merchantID(r), r.PathValue("id")))
}

// Register mounts CRUD plus the status route, and the convert route for quotations.
func (h *DocumentHandler) Register(mux *http.ServeMux, prefix string) {
	h.ResourceHandler.Register(mux, prefix)
	mux.HandleFunc("POST "+prefix+"/{id}/status", h.ChangeStatus)
	if h.svc.Kind() == models.KindQuotation {
		mux.HandleFunc("POST "+prefix+"/{id}/convert", h.Convert)
	}
}
