package models

import "time"

// Series is a named group of participants and the travels they predict on.
type Series struct {
	ID           string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Slug         string     `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string     `gorm:"type:text" json:"description"`
	StartDateUTC time.Time  `json:"start_date_utc"`
	EndDateUTC   *time.Time `json:"end_date_utc,omitempty"`
	IsLocked     bool       `gorm:"default:false" json:"is_locked"` // locked = membership frozen
	CreatedBy    string     `gorm:"index" json:"created_by"`

	Members []SeriesMember `gorm:"foreignKey:SeriesID" json:"members,omitempty"`

	Timestamps
}

// SeriesMember links a user into a series. Membership defines the universe of
// users eligible to predict on that series' matches. Members who never
// predict still forfeit the entry stake at settlement.
type SeriesMember struct {
	ID       string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SeriesID string    `gorm:"uniqueIndex:idx_series_member;not null" json:"series_id"`
	UserID   string    `gorm:"uniqueIndex:idx_series_member;index;not null" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
