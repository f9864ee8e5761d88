package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxHabits is the maximum number of habits a user may configure.
const MaxHabits = 3

// DefaultHabits is the habit set installed when a user follows the bot and has
// not configured their own yet.
var DefaultHabits = []string{"ウォーキング", "筋トレ", "瞑想"}

// Habit is one slot of a user's current habit set. Position is 1-indexed and
// doubles as the user-facing numbering; the pair (user_id, position) is unique.
// The set is only ever replaced as a whole, never edited slot by slot.
type Habit struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index;uniqueIndex:idx_habits_user_position,priority:1" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Position  int       `gorm:"not null;uniqueIndex:idx_habits_user_position,priority:2" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (h *Habit) BeforeCreate(*gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// HabitLog is an append-only record that a habit was completed. Name is
// denormalized on purpose: a later reconfigure must not rewrite history.
type HabitLog struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	UserID   string    `gorm:"size:36;not null;index" json:"user_id"`
	Name     string    `gorm:"not null" json:"name"`
	LoggedAt time.Time `gorm:"not null;index" json:"logged_at"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (l *HabitLog) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// HabitStat is one aggregated row of the stats view: completion count and most
// recent completion for a habit name inside the trailing window.
type HabitStat struct {
	Name         string    `json:"name"`
	Count        int64     `json:"count"`
	LastLoggedAt time.Time `json:"last_logged_at"`
}
