package models

import "time"

// Prediction is a participant's chosen outcome for a match. One row per
// (match, user); resubmission before cutoff overwrites in place.
type Prediction struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	MatchID        string    `gorm:"uniqueIndex:idx_match_user_pred;not null" json:"match_id"`
	UserID         string    `gorm:"uniqueIndex:idx_match_user_pred;index;not null" json:"user_id"`
	PickedTeam     string    `gorm:"type:varchar(1);not null" json:"picked_team"` // "A" or "B"
	PredictedAtUTC time.Time `gorm:"not null" json:"predicted_at_utc"`
}
