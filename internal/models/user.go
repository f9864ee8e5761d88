// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a LINE user known to the bot. A row is created on the first
// inbound event that references an unseen LINE user id and is never deleted by
// the application.
type User struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	LineUserID    string     `gorm:"uniqueIndex;not null" json:"line_user_id"`
	DisplayName   *string    `json:"display_name,omitempty"`
	PictureURL    *string    `json:"picture_url,omitempty"`
	StatusMessage *string    `json:"status_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Habits        []Habit    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"habits,omitempty"`
	HabitLogs     []HabitLog `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
