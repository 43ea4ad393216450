package notice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notice struct {
	ID        string     `gorm:"primaryKey;type:uuid"`
	Title     string     `gorm:"column:title;size:255;not null"`
	Content   string     `gorm:"column:content;not null"`
	Type      string     `gorm:"column:type;size:20;not null"`
	Priority  string     `gorm:"column:priority;size:10;not null;default:medium"`
	CreatedBy *string    `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
}

func (Notice) TableName() string {
	return "notices"
}

func (n *Notice) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
