package auth

import (
	"log/slog"
	"net/http"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/transport"
	"github.com/dcalliari/appe/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	// AllowAnonymous lets requests without a bearer token through with no
	// identity attached. Development only.
	AllowAnonymous bool
}

func NewHandler(svc ServiceAPI, allowAnonymous bool) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Service:        svc,
		AllowAnonymous: allowAnonymous,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// Verify echoes the identity carried by the bearer token.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	id := internal.IdentityFromContext(r.Context())
	if id == nil {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}
	h.WriteJSON(w, http.StatusOK, VerifyResponse{Valid: true, User: id})
}

// Authenticate resolves the bearer token into an Identity on the request
// context. A missing token is 401, a bad or expired one is 403.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			if h.AllowAnonymous {
				h.Logger.Debug("auth middleware: anonymous request allowed", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}
			h.HandleServiceError(w, r, internal.ErrUnauthenticated)
			return
		}

		id, err := h.Service.Verify(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token rejected", "path", r.URL.Path, "error", err)
			h.HandleServiceError(w, r, err)
			return
		}

		ctx := internal.ContextWithIdentity(r.Context(), id)
		ctx = logger.With(ctx, "user_id", id.UserID, "role", id.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
