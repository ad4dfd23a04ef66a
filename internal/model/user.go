package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User stores staff accounts. The same records form the directory the
// manager authorization gate checks credentials against.
type User struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        *string   `gorm:"type:varchar(255)"`
	PasswordHash string    `gorm:"not null"`
	Role         Role      `gorm:"type:varchar(20);not null"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// assignID gives a record a client-side UUID so that the same models work
// on PostgreSQL and MySQL without relying on a database default.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
