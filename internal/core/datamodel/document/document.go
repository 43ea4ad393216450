package document

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	ID         string    `gorm:"primaryKey;type:uuid"`
	Title      string    `gorm:"column:title;size:255;not null"`
	FilePath   string    `gorm:"column:file_path;size:500;not null"`
	Category   string    `gorm:"column:category;size:20;not null"`
	UploadedBy *string   `gorm:"column:uploaded_by;type:uuid"`
	UploadedAt time.Time `gorm:"column:uploaded_at;autoCreateTime"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(*gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
