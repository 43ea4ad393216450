package visitor

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VisitorRequest struct {
	ID              string    `gorm:"primaryKey;type:uuid"`
	RequesterID     string    `gorm:"column:requester_id;type:uuid;not null;index"`
	VisitorName     string    `gorm:"column:visitor_name;size:255;not null"`
	VisitorDocument *string   `gorm:"column:visitor_document;size:50"`
	VisitDate       time.Time `gorm:"column:visit_date;type:date;not null"`
	VisitTime       string    `gorm:"column:visit_time;size:8;not null;default:'00:00:00'"`
	Status          string    `gorm:"column:status;size:10;not null;default:pending"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (VisitorRequest) TableName() string {
	return "visitor_requests"
}

func (v *VisitorRequest) BeforeCreate(*gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
