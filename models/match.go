package models

import "time"

// MatchStatus is the match lifecycle state.
type MatchStatus string

const (
	// MatchStatusScheduled is the only state in which predictions are accepted.
	MatchStatusScheduled MatchStatus = "scheduled"
	// MatchStatusLive means the start time has passed but no outcome is
	// declared yet. Set by the status scheduler.
	MatchStatusLive MatchStatus = "live"
	// MatchStatusCompleted is terminal: winner recorded, ledger settled.
	MatchStatusCompleted MatchStatus = "completed"
	// MatchStatusWashedOut is terminal: event didn't happen, no ledger impact.
	MatchStatusWashedOut MatchStatus = "washed_out"
)

// Terminal reports whether the status forbids a new declaration.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusWashedOut
}

// Outcome keys stored in predictions and Match.Winner.
const (
	TeamA = "A"
	TeamB = "B"
)

// Match is one predictable binary-outcome travel event within a series.
type Match struct {
	ID           string      `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SeriesID     string      `gorm:"index;not null" json:"series_id"`
	Name         string      `gorm:"not null" json:"name"`
	Sport        string      `gorm:"default:'Travels'" json:"sport"`
	TeamA        string      `gorm:"not null" json:"team_a"`
	TeamB        string      `gorm:"not null" json:"team_b"`
	StartTimeUTC time.Time   `gorm:"index;not null" json:"start_time_utc"`
	CutoffMins   int         `gorm:"default:30" json:"cutoff_minutes_before"`
	EntryPoints  float64     `gorm:"default:50" json:"entry_points"`
	Status       MatchStatus `gorm:"type:varchar(16);default:'scheduled';index" json:"status"`

	// Winner is "A" or "B", set if and only if Status is completed.
	Winner     *string    `gorm:"type:varchar(1)" json:"winner,omitempty"`
	DeclaredAt *time.Time `json:"declared_at,omitempty"`

	Timestamps
}

// ValidTeam reports whether key names one of this match's two outcomes.
func (m *Match) ValidTeam(key string) bool {
	return key == TeamA || key == TeamB
}

// TeamName resolves an outcome key to its display label.
func (m *Match) TeamName(key string) string {
	switch key {
	case TeamA:
		return m.TeamA
	case TeamB:
		return m.TeamB
	}
	return ""
}
