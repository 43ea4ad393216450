package auth

import (
	"log/slog"
	"net/http"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/transport"
)

// RoleAuthorization guards routes by the caller's role.
type RoleAuthorization struct {
	*transport.BaseHandler
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{BaseHandler: transport.NewBaseHandler(logger)}
}

func (ra *RoleAuthorization) Require(roles ...internal.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := internal.IdentityFromContext(r.Context())
			if err := internal.RequireRole(id, roles...); err != nil {
				if id != nil {
					ra.Logger.WarnContext(r.Context(), "access denied: role not allowed",
						"user_id", id.UserID,
						"role", id.Role,
						"required_roles", roles)
				}
				ra.HandleServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RoleAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.Require(internal.RoleAdmin)
}
