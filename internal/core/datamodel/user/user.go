package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;type:uuid"`
	Apartment    string    `gorm:"column:apartment;size:10;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;size:255;not null"`
	Email        *string   `gorm:"column:email;size:255;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	Role         string    `gorm:"column:role;size:20;not null;default:resident"`
	Phone        *string   `gorm:"column:phone;size:20"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
