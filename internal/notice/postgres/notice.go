package postgres

import (
	"context"
	"time"

	noticeDatamodel "github.com/dcalliari/appe/internal/core/datamodel/notice"
	"github.com/dcalliari/appe/internal/notice"
	"gorm.io/gorm"
)

type NoticeRepository struct {
	db *gorm.DB
}

func NewNoticeRepository(db *gorm.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// ListActive returns notices without expiry or expiring on/after since,
// newest first.
func (r *NoticeRepository) ListActive(ctx context.Context, since time.Time) ([]*notice.Notice, error) {
	var rows []*noticeDatamodel.Notice
	err := r.db.WithContext(ctx).
		Where("expires_at IS NULL OR expires_at >= ?", since).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return notice.FromDataModelSlice(rows), nil
}

func (r *NoticeRepository) Create(ctx context.Context, n *notice.Notice) error {
	m := notice.ToDataModel(n)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	n.ID = m.ID
	n.CreatedAt = m.CreatedAt
	return nil
}

func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&noticeDatamodel.Notice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notice.ErrNoticeNotFound
	}
	return nil
}
