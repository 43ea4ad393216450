package user

import (
	"time"

	"github.com/dcalliari/appe/internal"
	userDatamodel "github.com/dcalliari/appe/internal/core/datamodel/user"
)

type User struct {
	ID           string        `json:"id"`
	Apartment    string        `json:"apartment"`
	Name         string        `json:"name"`
	Email        *string       `json:"email"`
	Role         internal.Role `json:"role"`
	Phone        *string       `json:"phone"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"createdAt"`
}

var (
	ErrUserNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrEmailTaken   = internal.NewConflictError("email already in use", internal.ErrCodeEmailTaken)
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Apartment:    u.Apartment,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Phone:        u.Phone,
		CreatedAt:    u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Apartment:    u.Apartment,
		Name:         u.Name,
		Email:        u.Email,
		Role:         internal.Role(u.Role),
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}
