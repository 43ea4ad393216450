package postgres

import (
	"context"
	"errors"

	"github.com/dcalliari/appe/internal/booking"
	"github.com/dcalliari/appe/internal/core/common/dberr"
	"github.com/dcalliari/appe/internal/core/common/validation"
	bookingDatamodel "github.com/dcalliari/appe/internal/core/datamodel/booking"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingRow struct {
	bookingDatamodel.SpaceBooking `gorm:"embedded"`
	OwnerName                     *string `gorm:"column:owner_name"`
	OwnerApartment                *string `gorm:"column:owner_apartment"`
}

func (row *bookingRow) toDomain() *booking.Booking {
	b := booking.FromDataModel(&row.SpaceBooking)
	if row.OwnerName != nil || row.OwnerApartment != nil {
		b.Owner = &booking.Owner{}
		if row.OwnerName != nil {
			b.Owner.Name = *row.OwnerName
		}
		if row.OwnerApartment != nil {
			b.Owner.Apartment = *row.OwnerApartment
		}
	}
	return b
}

func (r *BookingRepository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("space_bookings AS b").
		Select("b.*, u.name AS owner_name, u.apartment AS owner_apartment").
		Joins("LEFT JOIN users u ON u.id = b.user_id")
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var rows []bookingRow
	if err := r.withOwner(ctx).Where("b.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, booking.ErrBookingNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *BookingRepository) List(ctx context.Context, userID string) ([]*booking.Booking, error) {
	q := r.withOwner(ctx)
	if userID != "" {
		q = q.Where("b.user_id = ?", userID)
	}

	var rows []bookingRow
	if err := q.Order("b.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*booking.Booking, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// ListActiveForSlot returns the non-rejected bookings for a space and day.
func (r *BookingRepository) ListActiveForSlot(ctx context.Context, spaceName, date string) ([]*booking.Booking, error) {
	day, err := validation.ParseDate(date)
	if err != nil {
		return nil, err
	}

	var rows []bookingRow
	err = r.withOwner(ctx).
		Where("b.space_name = ? AND b.booking_date = ? AND b.status <> ?", spaceName, day, booking.StatusRejected).
		Order("b.start_time ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*booking.Booking, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// CreateIfFree checks the slot and inserts in one transaction. The partial
// unique index on (space_name, booking_date) catches concurrent inserts that
// pass the check together.
func (r *BookingRepository) CreateIfFree(ctx context.Context, b *booking.Booking) error {
	m, err := booking.ToDataModel(b)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := slotTaken(tx, m, "")
		if err != nil {
			return err
		}
		if taken {
			return booking.ErrSlotConflict
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return mapWriteError(err)
	}

	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking, checkSlot bool) error {
	m, err := booking.ToDataModel(b)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if checkSlot {
			taken, err := slotTaken(tx, m, m.ID)
			if err != nil {
				return err
			}
			if taken {
				return booking.ErrSlotConflict
			}
		}
		res := tx.Model(&bookingDatamodel.SpaceBooking{}).
			Where("id = ?", m.ID).
			Updates(map[string]interface{}{
				"space_name":   m.SpaceName,
				"booking_date": m.BookingDate,
				"start_time":   m.StartTime,
				"end_time":     m.EndTime,
				"status":       m.Status,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return booking.ErrBookingNotFound
		}
		return nil
	})
	return mapWriteError(err)
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).
		Model(&bookingDatamodel.SpaceBooking{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return mapWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&bookingDatamodel.SpaceBooking{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func slotTaken(tx *gorm.DB, m *bookingDatamodel.SpaceBooking, excludeID string) (bool, error) {
	q := tx.Model(&bookingDatamodel.SpaceBooking{}).
		Where("space_name = ? AND booking_date = ? AND status <> ?", m.SpaceName, m.BookingDate, booking.StatusRejected)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// slotIndex is the partial unique index guarding one active booking per slot.
const slotIndex = "uq_space_bookings_slot"

// mapWriteError reports slot index violations as ErrSlotConflict. Translated
// gorm errors carry no constraint name and are treated the same way.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, booking.ErrSlotConflict) || errors.Is(err, booking.ErrBookingNotFound) {
		return err
	}
	if dberr.IsUniqueViolation(err) {
		if name := dberr.ConstraintName(err); name != "" && name != slotIndex {
			return err
		}
		return booking.ErrSlotConflict.Wrap(err)
	}
	return err
}
