package postgres

import (
	"context"

	visitorDatamodel "github.com/dcalliari/appe/internal/core/datamodel/visitor"
	"github.com/dcalliari/appe/internal/visitor"
	"gorm.io/gorm"
)

type VisitorRepository struct {
	db *gorm.DB
}

func NewVisitorRepository(db *gorm.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

type visitorRow struct {
	visitorDatamodel.VisitorRequest `gorm:"embedded"`
	RequesterName                   *string `gorm:"column:requester_name"`
	RequesterApartment              *string `gorm:"column:requester_apartment"`
}

func (row *visitorRow) toDomain() *visitor.Request {
	v := visitor.FromDataModel(&row.VisitorRequest)
	if row.RequesterName != nil && row.RequesterApartment != nil {
		v.Requester = &visitor.Requester{Name: *row.RequesterName, Apartment: *row.RequesterApartment}
	}
	return v
}

func (r *VisitorRepository) withRequester(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("visitor_requests AS v").
		Select("v.*, u.name AS requester_name, u.apartment AS requester_apartment").
		Joins("LEFT JOIN users u ON u.id = v.requester_id")
}

func (r *VisitorRepository) GetByID(ctx context.Context, id string) (*visitor.Request, error) {
	var rows []visitorRow
	if err := r.withRequester(ctx).Where("v.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, visitor.ErrVisitorNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *VisitorRepository) List(ctx context.Context, requesterID string) ([]*visitor.Request, error) {
	q := r.withRequester(ctx)
	if requesterID != "" {
		q = q.Where("v.requester_id = ?", requesterID)
	}

	var rows []visitorRow
	if err := q.Order("v.created_at ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*visitor.Request, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *VisitorRepository) Create(ctx context.Context, v *visitor.Request) error {
	m, err := visitor.ToDataModel(v)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	v.ID = m.ID
	v.CreatedAt = m.CreatedAt
	return nil
}

func (r *VisitorRepository) Update(ctx context.Context, v *visitor.Request) error {
	m, err := visitor.ToDataModel(v)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&visitorDatamodel.VisitorRequest{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"visitor_name":     m.VisitorName,
			"visitor_document": m.VisitorDocument,
			"visit_date":       m.VisitDate,
			"visit_time":       m.VisitTime,
			"status":           m.Status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return visitor.ErrVisitorNotFound
	}
	return nil
}

func (r *VisitorRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).
		Model(&visitorDatamodel.VisitorRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return visitor.ErrVisitorNotFound
	}
	return nil
}

func (r *VisitorRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&visitorDatamodel.VisitorRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return visitor.ErrVisitorNotFound
	}
	return nil
}
