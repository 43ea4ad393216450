package notice

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/core/common/validation"
)

type Repository interface {
	ListActive(ctx context.Context, since time.Time) ([]*Notice, error)
	Create(ctx context.Context, n *Notice) error
	Delete(ctx context.Context, id string) error
}

type ServiceAPI interface {
	ListActive(ctx context.Context) ([]*Notice, error)
	Create(ctx context.Context, id *internal.Identity, dto CreateNoticeDTO) (*Notice, error)
	Delete(ctx context.Context, id *internal.Identity, noticeID string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithClock replaces the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) ListActive(ctx context.Context) ([]*Notice, error) {
	notices, err := s.repo.ListActive(ctx, StartOfDay(s.now()))
	if err != nil {
		return nil, internal.NewInternalError("failed to fetch notices", err)
	}
	return notices, nil
}

func (s *Service) Create(ctx context.Context, id *internal.Identity, dto CreateNoticeDTO) (*Notice, error) {
	if err := internal.RequireRole(id, internal.RoleAdmin); err != nil {
		return nil, err
	}

	priority := dto.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	v := validation.NewValidator()
	v.Field("title", strings.TrimSpace(dto.Title)).Required().MaxLength(255)
	v.Field("content", strings.TrimSpace(dto.Content)).Required()
	v.Field("type", dto.Type).OneOf(TypeMaintenance, TypeGeneral, TypeMeeting)
	v.Field("priority", priority).OneOf(PriorityLow, PriorityMedium, PriorityHigh)
	if err := v.Validate(); err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if dto.ExpiresAt != nil && *dto.ExpiresAt != "" {
		t, err := parseExpiry(*dto.ExpiresAt)
		if err != nil {
			return nil, internal.NewValidationFieldError("expires_at", "expires_at must be a date (YYYY-MM-DD) or RFC 3339 timestamp", internal.ErrCodeInvalidDate)
		}
		expiresAt = &t
	}

	createdBy := id.UserID
	n := &Notice{
		Title:     strings.TrimSpace(dto.Title),
		Content:   dto.Content,
		Type:      dto.Type,
		Priority:  priority,
		CreatedBy: &createdBy,
		CreatedAt: s.now().UTC(),
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, internal.NewInternalError("failed to create notice", err)
	}

	s.logger.Info("notice created", "notice_id", n.ID, "user_id", id.UserID, "type", n.Type, "priority", n.Priority)
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id *internal.Identity, noticeID string) error {
	if err := internal.RequireRole(id, internal.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, noticeID); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		return internal.NewInternalError("failed to delete notice", err)
	}
	s.logger.Info("notice deleted", "notice_id", noticeID, "user_id", id.UserID)
	return nil
}

func parseExpiry(s string) (time.Time, error) {
	if t, err := validation.ParseDate(s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
