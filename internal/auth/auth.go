package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 24 * time.Hour

// Credential is what the store returns for a login lookup.
type Credential struct {
	UserID       string
	Apartment    string
	Name         string
	Email        *string
	Phone        *string
	Role         internal.Role
	PasswordHash string
	CreatedAt    time.Time
}

// UserView is the public shape of a user returned on login and verify.
type UserView struct {
	ID        string        `json:"id"`
	Apartment string        `json:"apartment"`
	Name      string        `json:"name"`
	Email     *string       `json:"email"`
	Phone     *string       `json:"phone"`
	Role      internal.Role `json:"role"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type VerifyResponse struct {
	Valid bool               `json:"valid"`
	User  *internal.Identity `json:"user"`
}

// Claims is the signed token payload.
type Claims struct {
	UserID    string        `json:"userId"`
	Apartment string        `json:"apartment"`
	Role      internal.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() *internal.Identity {
	return &internal.Identity{
		UserID:    c.UserID,
		Apartment: c.Apartment,
		Role:      c.Role,
	}
}

type TokenGeneratorAPI interface {
	GenerateToken(id internal.Identity) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type CredentialStore interface {
	GetByApartment(ctx context.Context, apartment string) (*Credential, error)
}

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	Verify(tokenString string) (*internal.Identity, error)
}

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

var (
	ErrCredentialNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrTokenExpired       = &internal.AppError{
		Type:       internal.ErrorTypeForbidden,
		Code:       internal.ErrCodeTokenExpired,
		Message:    "token expired",
		StatusCode: http.StatusForbidden,
	}
)

func toUserView(c *Credential) UserView {
	return UserView{
		ID:        c.UserID,
		Apartment: c.Apartment,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Role:      c.Role,
	}
}
