package postgres

import (
	"context"
	"errors"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/auth"
	userDatamodel "github.com/dcalliari/appe/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByApartment(ctx context.Context, apartment string) (*auth.Credential, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("apartment = ?", apartment).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrCredentialNotFound
		}
		return nil, err
	}
	return &auth.Credential{
		UserID:       u.ID,
		Apartment:    u.Apartment,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         internal.Role(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}, nil
}
