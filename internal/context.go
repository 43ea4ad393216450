package internal

import (
	"context"
	"slices"
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

type Role string

const (
	RoleResident Role = "resident"
	RoleAdmin    Role = "admin"
	RoleDoorman  Role = "doorman"
)

func (r Role) Valid() bool {
	switch r {
	case RoleResident, RoleAdmin, RoleDoorman:
		return true
	}
	return false
}

// Identity is the authenticated caller bound to a request. Services take it
// as an explicit argument.
type Identity struct {
	UserID    string `json:"userId"`
	Apartment string `json:"apartment"`
	Role      Role   `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Owns reports whether the identity is the owner of a record.
func (i *Identity) Owns(ownerID string) bool {
	return i != nil && i.UserID != "" && i.UserID == ownerID
}

// RequireRole fails with a forbidden error unless id carries one of roles.
func RequireRole(id *Identity, roles ...Role) error {
	if id == nil {
		return ErrUnauthenticated
	}
	if !slices.Contains(roles, id.Role) {
		if len(roles) == 1 && roles[0] == RoleAdmin {
			return ErrAdminRequired
		}
		return ErrForbidden
	}
	return nil
}

// RequireOwnerOrAdmin fails unless id is an admin or owns the record.
func RequireOwnerOrAdmin(id *Identity, ownerID string) error {
	if id == nil {
		return ErrUnauthenticated
	}
	if id.IsAdmin() || id.Owns(ownerID) {
		return nil
	}
	return ErrForbidden
}

func IdentityFromContext(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	if id, ok := ctx.Value(ContextIdentityKey).(*Identity); ok {
		return id
	}
	return nil
}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, id)
}
