package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/core/common/validation"
	"github.com/dcalliari/appe/internal/core/events"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	// List returns bookings newest first; an empty userID lists everyone's.
	List(ctx context.Context, userID string) ([]*Booking, error)
	ListActiveForSlot(ctx context.Context, spaceName, date string) ([]*Booking, error)
	// CreateIfFree inserts b unless another non-rejected booking holds its
	// slot, in which case it returns ErrSlotConflict.
	CreateIfFree(ctx context.Context, b *Booking) error
	// Update persists b. When checkSlot is set the slot must be free of
	// other non-rejected bookings.
	Update(ctx context.Context, b *Booking, checkSlot bool) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type ServiceAPI interface {
	Spaces() []string
	Create(ctx context.Context, id *internal.Identity, dto CreateBookingDTO) (*Booking, error)
	Get(ctx context.Context, id *internal.Identity, bookingID string) (*Booking, error)
	List(ctx context.Context, id *internal.Identity) ([]*Booking, error)
	Update(ctx context.Context, id *internal.Identity, bookingID string, dto UpdateBookingDTO) (*Booking, error)
	Confirm(ctx context.Context, id *internal.Identity, bookingID string) (*Booking, error)
	Cancel(ctx context.Context, id *internal.Identity, bookingID string) (*Booking, error)
	Delete(ctx context.Context, id *internal.Identity, bookingID string) error
	Availability(ctx context.Context, spaceName, date string) (*Availability, error)
}

type Service struct {
	repo   Repository
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		events: publisher,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Spaces() []string {
	out := make([]string, len(Spaces))
	copy(out, Spaces)
	return out
}

func (s *Service) Create(ctx context.Context, id *internal.Identity, dto CreateBookingDTO) (*Booking, error) {
	if id == nil {
		return nil, internal.ErrUnauthenticated
	}

	v := validation.NewValidator()
	v.Field("space_name", strings.TrimSpace(dto.SpaceName)).Required()
	v.Field("booking_date", dto.BookingDate).Required().Date()
	v.Field("start_time", dto.StartTime).Required().Clock()
	v.Field("end_time", dto.EndTime).Required().Clock()
	if err := v.Validate(); err != nil {
		return nil, err
	}

	spaceName := strings.TrimSpace(dto.SpaceName)
	if !IsKnownSpace(spaceName) {
		return nil, ErrUnknownSpace
	}
	if err := validation.ValidateTimeRange(dto.StartTime, dto.EndTime); err != nil {
		return nil, err
	}

	date, _ := validation.NormalizeDate(dto.BookingDate)
	start, _ := validation.NormalizeClock(dto.StartTime)
	end, _ := validation.NormalizeClock(dto.EndTime)

	b := &Booking{
		UserID:      id.UserID,
		SpaceName:   spaceName,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
		Status:      StatusPending,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.CreateIfFree(ctx, b); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			if appErr.Code == internal.ErrCodeSlotConflict {
				s.logger.Info("booking rejected: slot taken", "user_id", id.UserID, "space_name", spaceName, "booking_date", date)
			}
			return nil, err
		}
		return nil, internal.NewInternalError("failed to create booking", err)
	}

	s.logger.Info("booking created",
		"booking_id", b.ID,
		"user_id", b.UserID,
		"space_name", b.SpaceName,
		"booking_date", b.BookingDate)
	s.publish(ctx, events.EventTypeBookingCreated, b)
	return b, nil
}

func (s *Service) Get(ctx context.Context, id *internal.Identity, bookingID string) (*Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := internal.RequireOwnerOrAdmin(id, b.UserID); err != nil {
		return nil, err
	}
	return b, nil
}

// List shows admins every booking and everyone else their own.
func (s *Service) List(ctx context.Context, id *internal.Identity) ([]*Booking, error) {
	if id == nil {
		return nil, internal.ErrUnauthenticated
	}
	owner := id.UserID
	if id.IsAdmin() {
		owner = ""
	}
	list, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, internal.NewInternalError("failed to fetch bookings", err)
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, id *internal.Identity, bookingID string, dto UpdateBookingDTO) (*Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := internal.RequireOwnerOrAdmin(id, b.UserID); err != nil {
		return nil, err
	}
	if dto.Status != nil && !id.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}

	// Patched fields may be omitted but never blanked.
	v := validation.NewValidator()
	if dto.BookingDate != nil {
		v.Field("booking_date", *dto.BookingDate).Required().Date()
	}
	if dto.StartTime != nil {
		v.Field("start_time", *dto.StartTime).Required().Clock()
	}
	if dto.EndTime != nil {
		v.Field("end_time", *dto.EndTime).Required().Clock()
	}
	if dto.Status != nil {
		v.Field("status", dto.Status).OneOf(StatusPending, StatusApproved, StatusRejected)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	updated := *b
	if dto.SpaceName != nil {
		name := strings.TrimSpace(*dto.SpaceName)
		if !IsKnownSpace(name) {
			return nil, ErrUnknownSpace
		}
		updated.SpaceName = name
	}
	if dto.BookingDate != nil {
		updated.BookingDate, _ = validation.NormalizeDate(*dto.BookingDate)
	}
	if dto.StartTime != nil {
		updated.StartTime, _ = validation.NormalizeClock(*dto.StartTime)
	}
	if dto.EndTime != nil {
		updated.EndTime, _ = validation.NormalizeClock(*dto.EndTime)
	}
	if dto.Status != nil {
		if !CanTransition(b.Status, *dto.Status) {
			return nil, ErrInvalidStatus
		}
		updated.Status = *dto.Status
	}

	if dto.StartTime != nil || dto.EndTime != nil {
		if err := validation.ValidateTimeRange(updated.StartTime, updated.EndTime); err != nil {
			return nil, err
		}
	}

	slotChanged := updated.SpaceName != b.SpaceName || updated.BookingDate != b.BookingDate
	checkSlot := slotChanged && updated.HoldsSlot()

	if err := s.repo.Update(ctx, &updated, checkSlot); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to update booking", err)
	}

	s.logger.Info("booking updated",
		"booking_id", updated.ID,
		"user_id", id.UserID,
		"space_name", updated.SpaceName,
		"booking_date", updated.BookingDate,
		"status", updated.Status)

	if updated.Status != b.Status {
		switch updated.Status {
		case StatusApproved:
			s.publish(ctx, events.EventTypeBookingConfirmed, &updated)
		case StatusRejected:
			s.publish(ctx, events.EventTypeBookingCancelled, &updated)
		}
	}
	return &updated, nil
}

// Confirm approves a booking. Admin only.
func (s *Service) Confirm(ctx context.Context, id *internal.Identity, bookingID string) (*Booking, error) {
	if err := internal.RequireRole(id, internal.RoleAdmin); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, b, StatusApproved, events.EventTypeBookingConfirmed)
}

// Cancel rejects a booking and frees its slot. Admin or owner.
func (s *Service) Cancel(ctx context.Context, id *internal.Identity, bookingID string) (*Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := internal.RequireOwnerOrAdmin(id, b.UserID); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, b, StatusRejected, events.EventTypeBookingCancelled)
}

func (s *Service) Delete(ctx context.Context, id *internal.Identity, bookingID string) error {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := internal.RequireOwnerOrAdmin(id, b.UserID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, bookingID); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		return internal.NewInternalError("failed to delete booking", err)
	}
	s.logger.Info("booking deleted", "booking_id", bookingID, "user_id", id.UserID)
	return nil
}

func (s *Service) Availability(ctx context.Context, spaceName, date string) (*Availability, error) {
	if strings.TrimSpace(date) == "" {
		return nil, ErrDateRequired
	}
	day, err := validation.NormalizeDate(date)
	if err != nil {
		return nil, internal.NewValidationFieldError("date", "date must be in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
	}
	if !IsKnownSpace(spaceName) {
		return nil, ErrUnknownSpace
	}

	existing, err := s.repo.ListActiveForSlot(ctx, spaceName, day)
	if err != nil {
		return nil, internal.NewInternalError("failed to fetch availability", err)
	}
	if existing == nil {
		existing = []*Booking{}
	}
	return &Availability{
		SpaceName:        spaceName,
		Date:             day,
		ExistingBookings: existing,
		Available:        len(existing) == 0,
	}, nil
}

func (s *Service) load(ctx context.Context, bookingID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to fetch booking", err)
	}
	return b, nil
}

func (s *Service) transition(ctx context.Context, id *internal.Identity, b *Booking, to, eventType string) (*Booking, error) {
	if !CanTransition(b.Status, to) {
		return nil, ErrInvalidStatus
	}
	if b.Status == to {
		return b, nil
	}
	if err := s.repo.UpdateStatus(ctx, b.ID, to); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to update booking status", err)
	}

	from := b.Status
	b.Status = to
	s.logger.Info("booking status changed",
		"booking_id", b.ID,
		"user_id", id.UserID,
		"from", from,
		"to", to)
	s.publish(ctx, eventType, b)
	return b, nil
}

func (s *Service) publish(ctx context.Context, eventType string, b *Booking) {
	if s.events == nil {
		return
	}
	evt := events.NewBookingEvent(eventType, b.ID, b.UserID, b.SpaceName, b.BookingDate, b.Status)
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish booking event", "event_type", eventType, "booking_id", b.ID, "error", err)
	}
}
