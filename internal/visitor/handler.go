package visitor

import (
	"log/slog"
	"net/http"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/transport"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// ListVisitors handles GET /visitors
func (h *Handler) ListVisitors(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context(), internal.IdentityFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, list)
}

// GetVisitor handles GET /visitors/{id}
func (h *Handler) GetVisitor(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.Get(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, v)
}

// CreateVisitor handles POST /visitors
func (h *Handler) CreateVisitor(w http.ResponseWriter, r *http.Request) {
	var dto CreateVisitorDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	v, err := h.Service.Create(r.Context(), internal.IdentityFromContext(r.Context()), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusCreated, "visitor created", v)
}

// UpdateVisitor handles PUT /visitors/{id}
func (h *Handler) UpdateVisitor(w http.ResponseWriter, r *http.Request) {
	var dto UpdateVisitorDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	v, err := h.Service.Update(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "visitor updated", v)
}

// ApproveVisitor handles PATCH /visitors/{id}/approve
func (h *Handler) ApproveVisitor(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.Approve(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "visitor approved", v)
}

// RejectVisitor handles PATCH /visitors/{id}/reject
func (h *Handler) RejectVisitor(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.Reject(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "visitor rejected", v)
}

// DeleteVisitor handles DELETE /visitors/{id}
func (h *Handler) DeleteVisitor(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "visitor deleted", nil)
}
