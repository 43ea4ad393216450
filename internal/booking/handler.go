package booking

import (
	"log/slog"
	"net/http"
	"net/url"

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

type availabilityResponse struct {
	Success bool `json:"success"`
	*Availability
}

// ListSpaces handles GET /bookings/spaces
func (h *Handler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	h.WriteSuccess(w, http.StatusOK, h.Service.Spaces())
}

// ListBookings handles GET /bookings
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context(), internal.IdentityFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, list)
}

// GetBooking handles GET /bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Service.Get(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, b)
}

// Availability handles GET /bookings/availability/{spaceName}?date=YYYY-MM-DD
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	spaceName, err := url.PathUnescape(chi.URLParam(r, "spaceName"))
	if err != nil {
		h.HandleServiceError(w, r, ErrUnknownSpace)
		return
	}

	a, err := h.Service.Availability(r.Context(), spaceName, r.URL.Query().Get("date"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, availabilityResponse{Success: true, Availability: a})
}

// CreateBooking handles POST /bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var dto CreateBookingDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	b, err := h.Service.Create(r.Context(), internal.IdentityFromContext(r.Context()), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusCreated, "booking created", b)
}

// UpdateBooking handles PUT /bookings/{id}
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	var dto UpdateBookingDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	b, err := h.Service.Update(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "booking updated", b)
}

// ConfirmBooking handles PATCH /bookings/{id}/confirm
func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Service.Confirm(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "booking confirmed", b)
}

// CancelBooking handles PATCH /bookings/{id}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Service.Cancel(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "booking cancelled", b)
}

// DeleteBooking handles DELETE /bookings/{id}
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "booking deleted", nil)
}
