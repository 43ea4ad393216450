package chat

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

// ListContacts handles GET /chat/users
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Service.Contacts(r.Context(), internal.IdentityFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ContactsResponse{Users: contacts})
}

// ListConversations handles GET /chat/conversations
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.Service.Conversations(r.Context(), internal.IdentityFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ConversationsResponse{Conversations: convs})
}

// GetThread handles GET /chat/messages/{userId}
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.Service.Thread(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "userId"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ThreadResponse{Messages: msgs})
}

// SendMessage handles POST /chat/send
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var dto SendMessageDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	m, err := h.Service.Send(r.Context(), internal.IdentityFromContext(r.Context()), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, SendMessageResponse{
		Message:     "message sent",
		ChatMessage: m,
		Success:     true,
	})
}
