package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"travel-predict-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettlementService is the single place where declared outcomes become ledger
// entries. Every declare/reset path goes through here so the zero-sum and
// one-entry-per-member invariants hold uniformly.
type SettlementService struct {
	DB *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{DB: db}
}

// SettlementResult summarizes one completed settlement.
type SettlementResult struct {
	Match        *models.Match    `json:"match"`
	Groups       SettlementGroups `json:"-"`
	WinnerCount  int              `json:"winner_count"`
	LoserCount   int              `json:"loser_count"`
	MissedCount  int              `json:"missed_count"`
	Distribution Distribution     `json:"distribution"`
}

// DeclareWinner settles a match: partitions the series membership against the
// winning team, writes one ledger entry per member and marks the match
// completed, all inside one transaction holding a row lock on the match, so
// two concurrent declarations cannot both pass the terminal-state guard.
func (s *SettlementService) DeclareWinner(matchID, winningTeam string) (*SettlementResult, error) {
	var result *SettlementResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var match models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&match, "id = ?", matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		// Guard re-checked under the lock: check-then-act stays atomic.
		if match.Status.Terminal() {
			return ErrAlreadyDeclared
		}
		if !match.ValidTeam(winningTeam) {
			return ErrInvalidOutcome
		}

		var preds []models.Prediction
		if err := tx.Where("match_id = ?", match.ID).Find(&preds).Error; err != nil {
			return err
		}

		memberIDs, err := membersOf(tx, match.SeriesID)
		if err != nil {
			return err
		}

		groups := PartitionMembers(memberIDs, preds, winningTeam)
		dist := ComputeDistribution(len(groups.Winners), len(groups.Losers), len(groups.Missed), match.EntryPoints)

		now := time.Now().UTC()
		entries := make([]models.LedgerEntry, 0, len(memberIDs))
		for _, uid := range groups.Winners {
			entries = append(entries, models.LedgerEntry{
				ID:       uuid.NewString(),
				UserID:   uid,
				MatchID:  match.ID,
				SeriesID: match.SeriesID,
				Points:   dist.PerWinner,
				Reason:   models.LedgerReasonWin,
				Note:     fmt.Sprintf("Win: %s", match.Name),
			})
		}
		for _, uid := range groups.Losers {
			entries = append(entries, models.LedgerEntry{
				ID:       uuid.NewString(),
				UserID:   uid,
				MatchID:  match.ID,
				SeriesID: match.SeriesID,
				Points:   -match.EntryPoints,
				Reason:   models.LedgerReasonLoss,
				Note:     fmt.Sprintf("Loss: %s", match.Name),
			})
		}
		for _, uid := range groups.Missed {
			entries = append(entries, models.LedgerEntry{
				ID:       uuid.NewString(),
				UserID:   uid,
				MatchID:  match.ID,
				SeriesID: match.SeriesID,
				Points:   -match.EntryPoints,
				Reason:   models.LedgerReasonMissed,
				Note:     fmt.Sprintf("Missed: %s", match.Name),
			})
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}

		match.Status = models.MatchStatusCompleted
		match.Winner = &winningTeam
		match.DeclaredAt = &now
		if err := tx.Save(&match).Error; err != nil {
			return err
		}

		result = &SettlementResult{
			Match:        &match,
			Groups:       groups,
			WinnerCount:  len(groups.Winners),
			LoserCount:   len(groups.Losers),
			MissedCount:  len(groups.Missed),
			Distribution: dist,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[SETTLE] Match %s: winner=%s pot=%.2f per_winner=%.2f (w=%d l=%d m=%d)",
		matchID, winningTeam, result.Distribution.TotalPot, result.Distribution.PerWinner,
		result.WinnerCount, result.LoserCount, result.MissedCount)
	return result, nil
}

// DeclareWashout marks a match washed out. Stakes were never taken, so no
// ledger entries are written and the winner stays unset.
func (s *SettlementService) DeclareWashout(matchID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var match models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&match, "id = ?", matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if match.Status.Terminal() {
			return ErrAlreadyDeclared
		}

		now := time.Now().UTC()
		match.Status = models.MatchStatusWashedOut
		match.Winner = nil
		match.DeclaredAt = &now
		return tx.Save(&match).Error
	})
}

// ResetMatch deletes every ledger entry keyed to the match and returns it to
// the open state with winner and declaration time cleared. Resetting an
// already-open match is a no-op, not an error; this is the only supported
// correction mechanism for a settlement.
func (s *SettlementService) ResetMatch(matchID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var match models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&match, "id = ?", matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		if err := tx.Where("match_id = ?", match.ID).
			Delete(&models.LedgerEntry{}).Error; err != nil {
			return err
		}

		match.Status = models.MatchStatusScheduled
		match.Winner = nil
		match.DeclaredAt = nil
		return tx.Save(&match).Error
	})
}

// membersOf enumerates the user IDs eligible to predict on a series' matches.
func membersOf(tx *gorm.DB, seriesID string) ([]string, error) {
	var ids []string
	err := tx.Model(&models.SeriesMember{}).
		Where("series_id = ?", seriesID).
		Order("joined_at ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// DeclareMatchEndpoint handles the admin declare action: a winning team (by
// key or label) or a washout flag.
func (s *SettlementService) DeclareMatchEndpoint(c *fiber.Ctx) error {
	matchID := c.Params("id")
	type Req struct {
		Winner    string `json:"winner"`
		WashedOut bool   `json:"washed_out"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if req.WashedOut {
		if err := s.DeclareWashout(matchID); err != nil {
			return declareError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Declared as washed out."})
	}

	var match models.Match
	if err := s.DB.First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	// Accept either the outcome key ("A"/"B") or the team label.
	winnerKey := req.Winner
	switch req.Winner {
	case match.TeamA:
		winnerKey = models.TeamA
	case match.TeamB:
		winnerKey = models.TeamB
	}

	result, err := s.DeclareWinner(matchID, winnerKey)
	if err != nil {
		return declareError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    fmt.Sprintf("%s declared successfully.", match.TeamName(winnerKey)),
		"status":     result.Match.Status,
		"winner":     result.Match.Winner,
		"settlement": result,
	})
}

// ResetMatchEndpoint handles the admin reset action.
func (s *SettlementService) ResetMatchEndpoint(c *fiber.Ctx) error {
	if err := s.ResetMatch(c.Params("id")); err != nil {
		return declareError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Match reset successfully."})
}

func declareError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrAlreadyDeclared), errors.Is(err, ErrInvalidOutcome):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("[SETTLE] declare/reset failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "settlement failed", "details": err.Error()})
	}
}
