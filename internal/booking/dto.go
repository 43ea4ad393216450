package booking

type CreateBookingDTO struct {
	SpaceName   string `json:"space_name" validate:"required"`
	BookingDate string `json:"booking_date" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
}

// UpdateBookingDTO is a partial update; nil fields keep their value.
type UpdateBookingDTO struct {
	SpaceName   *string `json:"space_name" validate:"omitempty,min=1"`
	BookingDate *string `json:"booking_date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}
