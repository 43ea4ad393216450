package booking

import (
	"slices"
	"time"

	"github.com/dcalliari/appe/internal"
	bookingDatamodel "github.com/dcalliari/appe/internal/core/datamodel/booking"
	"github.com/dcalliari/appe/internal/core/common/validation"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Spaces is the fixed catalog of bookable common areas.
var Spaces = []string{
	"Salão de Festas",
	"Churrasqueira",
	"Playground",
	"Quadra de Tênis",
	"Piscina",
	"Academia",
}

func IsKnownSpace(name string) bool {
	return slices.Contains(Spaces, name)
}

type Owner struct {
	Name      string `json:"name"`
	Apartment string `json:"apartment"`
}

// Booking reserves a space for a whole day. Times are zero-padded HH:MM.
type Booking struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	SpaceName   string    `json:"space_name"`
	BookingDate string    `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	Owner       *Owner    `json:"user,omitempty"`
}

// HoldsSlot reports whether the booking blocks its (space, date) slot.
func (b *Booking) HoldsSlot() bool {
	return b.Status != StatusRejected
}

// CanTransition reports whether a booking may move from one status to
// another. Writing the current status again is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusRejected
	}
	return false
}

type Availability struct {
	SpaceName        string     `json:"data"`
	Date             string     `json:"date"`
	ExistingBookings []*Booking `json:"existingBookings"`
	Available        bool       `json:"available"`
}

var (
	ErrBookingNotFound = internal.NewNotFoundError("booking not found", internal.ErrCodeBookingNotFound)
	ErrSlotConflict    = internal.NewConflictError("space already booked for this date", internal.ErrCodeSlotConflict)
	ErrInvalidStatus   = internal.NewValidationError("status transition not allowed", internal.ErrCodeInvalidTransition)
	ErrUnknownSpace    = internal.NewValidationFieldError("space_name", "unknown space", internal.ErrCodeUnknownSpace)
	ErrDateRequired    = internal.NewValidationError("date query parameter is required", internal.ErrCodeInvalidDate)
)

func ToDataModel(b *Booking) (*bookingDatamodel.SpaceBooking, error) {
	date, err := validation.ParseDate(b.BookingDate)
	if err != nil {
		return nil, err
	}
	return &bookingDatamodel.SpaceBooking{
		ID:          b.ID,
		UserID:      b.UserID,
		SpaceName:   b.SpaceName,
		BookingDate: date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
	}, nil
}

func FromDataModel(b *bookingDatamodel.SpaceBooking) *Booking {
	return &Booking{
		ID:          b.ID,
		UserID:      b.UserID,
		SpaceName:   b.SpaceName,
		BookingDate: b.BookingDate.UTC().Format(validation.DateLayout),
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
	}
}
