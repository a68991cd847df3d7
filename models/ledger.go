package models

import "time"

// LedgerReason tags why a ledger entry was written.
type LedgerReason string

const (
	LedgerReasonWin    LedgerReason = "win"
	LedgerReasonLoss   LedgerReason = "loss"
	LedgerReasonMissed LedgerReason = "missed"
)

// LedgerEntry is an immutable record of one point transfer caused by settling
// one match for one user. Entries are never updated in place; correction is
// always delete-and-resettle via the match reset. The (match, user) unique
// index guarantees at most one entry per settlement cycle.
type LedgerEntry struct {
	ID       string       `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string       `gorm:"uniqueIndex:idx_ledger_match_user;index;not null" json:"user_id"`
	MatchID  string       `gorm:"uniqueIndex:idx_ledger_match_user;index;not null" json:"match_id"`
	SeriesID string       `gorm:"index;not null" json:"series_id"`
	Points   float64      `gorm:"not null" json:"points"` // signed: +payout / -stake
	Reason   LedgerReason `gorm:"type:varchar(16);not null" json:"reason"`
	Note     string       `json:"note,omitempty"` // e.g. "Win: Travel01"

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
