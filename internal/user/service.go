package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/auth"
	"github.com/dcalliari/appe/internal/core/common/dberr"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	EmailInUse(ctx context.Context, email, excludeID string) (bool, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

type ServiceAPI interface {
	GetProfile(ctx context.Context, id *internal.Identity) (*User, error)
	UpdateProfile(ctx context.Context, id *internal.Identity, dto UpdateProfileDTO) (*User, error)
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) GetProfile(ctx context.Context, id *internal.Identity) (*User, error) {
	if id == nil {
		return nil, internal.ErrUnauthenticated
	}
	return s.repo.GetByID(ctx, id.UserID)
}

func (s *Service) UpdateProfile(ctx context.Context, id *internal.Identity, dto UpdateProfileDTO) (*User, error) {
	if id == nil {
		return nil, internal.ErrUnauthenticated
	}
	if _, err := s.repo.GetByID(ctx, id.UserID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, internal.NewValidationFieldError("name", "name must not be blank", internal.ErrCodeValidationFailed)
		}
		fields["name"] = name
	}
	if dto.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*dto.Email))
		taken, err := s.repo.EmailInUse(ctx, email, id.UserID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check email", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		fields["email"] = email
	}
	if dto.Phone != nil {
		fields["phone"] = strings.TrimSpace(*dto.Phone)
	}
	if dto.Password != nil {
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		fields["password_hash"] = hash
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id.UserID, fields); err != nil {
			if dberr.IsUniqueViolation(err) {
				return nil, ErrEmailTaken
			}
			if errors.Is(err, ErrUserNotFound) {
				return nil, err
			}
			return nil, internal.NewInternalError("failed to update profile", err)
		}
		s.logger.Info("profile updated", "user_id", id.UserID, "fields", len(fields))
	}

	return s.repo.GetByID(ctx, id.UserID)
}
