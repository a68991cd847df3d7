package models

import "time"

// UserStreak is a denormalized snapshot of a user's win/loss streaks across
// completed matches, recomputed by the streak worker after settlements.
type UserStreak struct {
	ID            string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID        string    `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak string    `gorm:"type:varchar(8)" json:"current_streak"` // e.g. "3W", "2L", "-"
	LongestWin    int       `gorm:"default:0" json:"longest_win"`
	LongestLoss   int       `gorm:"default:0" json:"longest_loss"`
	ComputedAt    time.Time `json:"computed_at"`
}
