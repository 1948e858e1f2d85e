// Package handlers exposes the services over HTTP. Every handler decodes a typed request,
// calls one service entry point and writes the returned envelope with httpx.
package handlers

import (
	"context"
	"net/http"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/httpx"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// Collection is the entry point set shared by every merchant scoped family.
type Collection[T any, R any] interface {
	List(ctx context.Context, merchantID string) validation.Result[[]*T]
	Get(ctx context.Context, merchantID, id string) validation.Result[*T]
	Create(ctx context.Context, merchantID string, req R) validation.Result[*T]
	Update(ctx context.Context, merchantID, id string, req R) validation.Result[*T]
	Delete(ctx context.Context, merchantID, id string) validation.Result[struct{}]
}

// ResourceHandler serves CRUD routes for one merchant scoped collection:
//
//	GET    /api/merchants/{merchantID}/{collection}
//	POST   /api/merchants/{merchantID}/{collection}
//	GET    /api/merchants/{merchantID}/{collection}/{id}
//	PUT    /api/merchants/{merchantID}/{collection}/{id}
//	DELETE /api/merchants/{merchantID}/{collection}/{id}
type ResourceHandler[T any, R any] struct {
	svc    Collection[T, R]
	decode func(r *http.Request) (R, error)
}

// NewResourceHandler serves svc, decoding request bodies with httpx.Decode.
func NewResourceHandler[T any, R any](svc Collection[T, R]) *ResourceHandler[T, R] {
	return &ResourceHandler[T, R]{svc: svc, decode: decodeRequest[R]}
}

func decodeRequest[R any](r *http.Request) (R, error) {
	var req R
	err := httpx.Decode(r, &req)
	return req, err
}

func merchantID(r *http.Request) string { return r.PathValue("merchantID") }

func (h *ResourceHandler[T, R]) List(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.List(r.Context(), merchantID(r)))
}

func (h *ResourceHandler[T, R]) Get(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Get(r.Context(), merchantID(r), r.PathValue("id")))
}

func (h *ResourceHandler[T, R]) Create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(r)
	if err != nil {
		httpx.Malformed(w)
		return
	}
	httpx.WriteCreated(w, h.svc.Create(r.Context(), merchantID(r), req))
}

func (h *ResourceHandler[T, R]) Update(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(r)
	if err != nil {
		httpx.Malformed(w)
		return
	}
	httpx.WriteResult(w, h.svc.Update(r.Context(), merchantID(r), r.PathValue("id"), req))
}

func (h *ResourceHandler[T, R]) Delete(w http.ResponseWriter, r *http.Request) {
	httpx.WriteResult(w, h.svc.Delete(r.Context(), merchantID(r), r.PathValue("id")))
}

// Register mounts the CRUD routes under prefix, e.g. "/api/merchants/{merchantID}/clients".
func (h *ResourceHandler[T, R]) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix, h.List)
	mux.HandleFunc("POST "+prefix, h.Create)
	mux.HandleFunc("GET "+prefix+"/{id}", h.Get)
	mux.HandleFunc("PUT "+prefix+"/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/{id}", h.Delete)
}
