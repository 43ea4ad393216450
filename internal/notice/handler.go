package notice

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

func (h *Handler) ListNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := h.Service.ListActive(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, notices)
}

func (h *Handler) CreateNotice(w http.ResponseWriter, r *http.Request) {
	var dto CreateNoticeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	n, err := h.Service.Create(r.Context(), internal.IdentityFromContext(r.Context()), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusCreated, "notice created", n)
}

func (h *Handler) DeleteNotice(w http.ResponseWriter, r *http.Request) {
	noticeID := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), internal.IdentityFromContext(r.Context()), noticeID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "notice deleted", nil)
}
