package services

import (
	"errors"
	"log"
	"time"

	"travel-predict-system/models"
	"travel-predict-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PredictionService struct {
	DB *gorm.DB
}

func NewPredictionService(db *gorm.DB) *PredictionService {
	return &PredictionService{DB: db}
}

// SubmitPrediction records or overwrites the user's pick for a match. The
// window is open only while the match is still scheduled and now is before
// the cutoff; resubmission before cutoff is an upsert, never a duplicate.
// The ledger is untouched here.
func (s *PredictionService) SubmitPrediction(matchID, userID, team string, now time.Time) (*models.Prediction, error) {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if !match.ValidTeam(team) {
		return nil, ErrInvalidChoice
	}
	if match.Status != models.MatchStatusScheduled ||
		utils.DeadlinePassed(match.StartTimeUTC, match.CutoffMins, now) {
		return nil, ErrWindowClosed
	}

	pred := models.Prediction{
		ID:             uuid.NewString(),
		MatchID:        matchID,
		UserID:         userID,
		PickedTeam:     team,
		PredictedAtUTC: now.UTC(),
	}
	// Upsert on the (match_id, user_id) unique index: concurrent submissions
	// by the same user race harmlessly to last-write-wins.
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"picked_team", "predicted_at_utc"}),
	}).Create(&pred).Error; err != nil {
		return nil, err
	}

	// On the conflict path the stored row keeps its original ID, not the one
	// generated above. Re-read so the caller sees the row as persisted.
	var saved models.Prediction
	if err := s.DB.Where("match_id = ? AND user_id = ?", matchID, userID).
		First(&saved).Error; err != nil {
		return nil, err
	}

	log.Printf("[PREDICT] user=%s match=%s team=%s", userID, matchID, team)
	return &saved, nil
}

// GetUserPredictions returns the user's picks for a set of matches, keyed by
// match ID.
func (s *PredictionService) GetUserPredictions(userID string, matchIDs []string) (map[string]string, error) {
	if len(matchIDs) == 0 {
		return map[string]string{}, nil
	}
	var preds []models.Prediction
	if err := s.DB.Where("user_id = ? AND match_id IN ?", userID, matchIDs).
		Find(&preds).Error; err != nil {
		return nil, err
	}
	byMatch := make(map[string]string, len(preds))
	for _, p := range preds {
		byMatch[p.MatchID] = p.PickedTeam
	}
	return byMatch, nil
}

// SubmitPredictionEndpoint handles POST /series/:id/matches/:match_id/predict.
func (s *PredictionService) SubmitPredictionEndpoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	matchID := c.Params("match_id")

	type Req struct {
		Team string `json:"team" validate:"required,oneof=A B"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid team selection"})
	}

	pred, err := s.SubmitPrediction(matchID, userID, req.Team, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrMatchNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrInvalidChoice):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrWindowClosed):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "failed to save prediction"})
		}
	}
	return c.Status(201).JSON(pred)
}
