package postgres

import (
	"context"
	"strings"

	documentDatamodel "github.com/dcalliari/appe/internal/core/datamodel/document"
	"github.com/dcalliari/appe/internal/document"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) List(ctx context.Context, f document.Filter) ([]*document.Document, error) {
	q := r.db.WithContext(ctx).Model(&documentDatamodel.Document{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		q = q.Where("title LIKE ? ESCAPE '\\'", "%"+escapeLike(f.Search)+"%")
	}

	var rows []*documentDatamodel.Document
	if err := q.Order("uploaded_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return document.FromDataModelSlice(rows), nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*document.Document, error) {
	var rows []*documentDatamodel.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, document.ErrDocumentNotFound
	}
	return document.FromDataModel(rows[0]), nil
}

func (r *DocumentRepository) Create(ctx context.Context, d *document.Document) error {
	m := document.ToDataModel(d)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	d.ID = m.ID
	d.UploadedAt = m.UploadedAt
	return nil
}

func (r *DocumentRepository) Update(ctx context.Context, d *document.Document) error {
	res := r.db.WithContext(ctx).
		Model(&documentDatamodel.Document{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"title":     d.Title,
			"file_path": d.FilePath,
			"category":  d.Category,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&documentDatamodel.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
