package booking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SpaceBooking rows are unique on (space_name, booking_date) among
// non-rejected rows; the partial index lives in the SQL migrations.
type SpaceBooking struct {
	ID          string    `gorm:"primaryKey;type:uuid"`
	UserID      string    `gorm:"column:user_id;type:uuid;not null;index"`
	SpaceName   string    `gorm:"column:space_name;size:255;not null"`
	BookingDate time.Time `gorm:"column:booking_date;type:date;not null"`
	StartTime   string    `gorm:"column:start_time;size:5;not null"`
	EndTime     string    `gorm:"column:end_time;size:5;not null"`
	Status      string    `gorm:"column:status;size:10;not null;default:pending"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (SpaceBooking) TableName() string {
	return "space_bookings"
}

func (b *SpaceBooking) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
