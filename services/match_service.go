package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"travel-predict-system/models"
	"travel-predict-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MatchService struct {
	DB    *gorm.DB
	Preds *PredictionService
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db, Preds: NewPredictionService(db)}
}

// CreateMatch handles POST /admin/series/:id/matches.
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	seriesID := c.Params("id")

	type Req struct {
		Name         string  `json:"name" validate:"required"`
		Sport        string  `json:"sport"`
		TeamA        string  `json:"team_a" validate:"required"`
		TeamB        string  `json:"team_b" validate:"required"`
		StartTimeUTC string  `json:"start_time_utc" validate:"required"`
		CutoffMins   int     `json:"cutoff_minutes_before"`
		EntryPoints  float64 `json:"entry_points"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "name, team_a, team_b and start_time_utc are required"})
	}

	if err := s.DB.First(&models.Series{}, "id = ?", seriesID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": ErrSeriesNotFound.Error()})
	}

	start, err := time.Parse(time.RFC3339, req.StartTimeUTC)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid start_time_utc (use RFC3339)"})
	}

	// Duplicate travel names within a series confuse the planner view.
	var existing models.Match
	err = s.DB.Where("series_id = ? AND LOWER(name) = LOWER(?)", seriesID, strings.TrimSpace(req.Name)).
		First(&existing).Error
	if err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "a travel with this name already exists in the series"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	if req.CutoffMins <= 0 {
		req.CutoffMins = 30
	}
	if req.EntryPoints <= 0 {
		req.EntryPoints = 50
	}
	if req.Sport == "" {
		req.Sport = "Travels"
	}

	match := &models.Match{
		SeriesID:     seriesID,
		Name:         strings.TrimSpace(req.Name),
		Sport:        req.Sport,
		TeamA:        strings.TrimSpace(req.TeamA),
		TeamB:        strings.TrimSpace(req.TeamB),
		StartTimeUTC: start.UTC(),
		CutoffMins:   req.CutoffMins,
		EntryPoints:  req.EntryPoints,
		Status:       models.MatchStatusScheduled,
	}
	if err := s.DB.Create(match).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create match"})
	}
	return c.Status(201).JSON(match)
}

// UpdateMatch handles PUT /admin/series/:id/matches/:match_id.
func (s *MatchService) UpdateMatch(c *fiber.Ctx) error {
	seriesID := c.Params("id")
	matchID := c.Params("match_id")

	var match models.Match
	if err := s.DB.Where("id = ? AND series_id = ?", matchID, seriesID).
		First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	type Req struct {
		Name         string  `json:"name"`
		Sport        string  `json:"sport"`
		TeamA        string  `json:"team_a"`
		TeamB        string  `json:"team_b"`
		StartTimeUTC string  `json:"start_time_utc"`
		CutoffMins   int     `json:"cutoff_minutes_before"`
		EntryPoints  float64 `json:"entry_points"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if req.StartTimeUTC != "" {
		start, err := time.Parse(time.RFC3339, req.StartTimeUTC)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid start_time_utc (use RFC3339)"})
		}
		match.StartTimeUTC = start.UTC()
	}
	if req.Name != "" {
		match.Name = strings.TrimSpace(req.Name)
	}
	if req.Sport != "" {
		match.Sport = req.Sport
	}
	if req.TeamA != "" {
		match.TeamA = strings.TrimSpace(req.TeamA)
	}
	if req.TeamB != "" {
		match.TeamB = strings.TrimSpace(req.TeamB)
	}
	if req.CutoffMins > 0 {
		match.CutoffMins = req.CutoffMins
	}
	if req.EntryPoints > 0 {
		match.EntryPoints = req.EntryPoints
	}

	if err := s.DB.Save(&match).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(match)
}

// DeleteMatch removes a match with all linked predictions and ledger entries.
func (s *MatchService) DeleteMatch(c *fiber.Ctx) error {
	matchID := c.Params("match_id")
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", matchID).Delete(&models.LedgerEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("match_id = ?", matchID).Delete(&models.Prediction{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Match{}, "id = ?", matchID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(404, "match not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("[MATCH] Deleted match %s with linked predictions and ledger entries", matchID)
	return c.JSON(fiber.Map{"message": "match deleted"})
}

// matchView decorates a match with window state for list responses.
type matchView struct {
	models.Match
	CutoffTimeUTC time.Time `json:"cutoff_time_utc"`
	TimeLeft      string    `json:"time_left"`
	Locked        bool      `json:"locked"`
	PickedTeam    string    `json:"picked_team,omitempty"`
	PickedName    string    `json:"picked_name,omitempty"`
}

func buildMatchView(m models.Match, now time.Time, picked string) matchView {
	v := matchView{
		Match:         m,
		CutoffTimeUTC: utils.CutoffTime(m.StartTimeUTC, m.CutoffMins),
		TimeLeft:      utils.TimeLeftLabel(m.StartTimeUTC, m.CutoffMins, now),
		Locked: m.Status != models.MatchStatusScheduled ||
			utils.DeadlinePassed(m.StartTimeUTC, m.CutoffMins, now),
		PickedTeam: picked,
	}
	if picked != "" {
		v.PickedName = m.TeamName(picked)
	}
	return v
}

// ListSeriesMatches handles GET /admin/series/:id/matches, grouped by status.
func (s *MatchService) ListSeriesMatches(c *fiber.Ctx) error {
	seriesID := c.Params("id")

	var matches []models.Match
	if err := s.DB.Where("series_id = ?", seriesID).
		Order("start_time_utc ASC").
		Find(&matches).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch matches"})
	}

	now := time.Now()
	grouped := map[string][]matchView{
		"upcoming":   {},
		"ongoing":    {},
		"completed":  {},
		"washed_out": {},
	}
	for _, m := range matches {
		v := buildMatchView(m, now, "")
		switch m.Status {
		case models.MatchStatusScheduled:
			grouped["upcoming"] = append(grouped["upcoming"], v)
		case models.MatchStatusLive:
			grouped["ongoing"] = append(grouped["ongoing"], v)
		case models.MatchStatusCompleted:
			grouped["completed"] = append(grouped["completed"], v)
		case models.MatchStatusWashedOut:
			grouped["washed_out"] = append(grouped["washed_out"], v)
		}
	}
	return c.JSON(fiber.Map{"series_id": seriesID, "grouped": grouped})
}

// GetPlanner handles GET /admin/matches/:match_id/planner: the
// pre-declaration view with probable pot and per-winner for each hypothetical
// outcome.
func (s *MatchService) GetPlanner(c *fiber.Ctx) error {
	matchID := c.Params("match_id")

	var match models.Match
	if err := s.DB.First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var preds []models.Prediction
	if err := s.DB.Where("match_id = ?", matchID).Find(&preds).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	memberIDs, err := membersOf(s.DB, match.SeriesID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	aCount, bCount := 0, 0
	for _, p := range preds {
		if p.PickedTeam == models.TeamA {
			aCount++
		} else {
			bCount++
		}
	}
	missed := len(memberIDs) - len(preds)
	if missed < 0 {
		missed = 0
	}

	now := time.Now()
	return c.JSON(fiber.Map{
		"match":         buildMatchView(match, now, ""),
		"members_count": len(memberIDs),
		"a_count":       aCount,
		"b_count":       bCount,
		"missed":        missed,
		"cutoff_over":   utils.DeadlinePassed(match.StartTimeUTC, match.CutoffMins, now),
		"probable": fiber.Map{
			models.TeamA: ComputeDistribution(aCount, bCount, missed, match.EntryPoints),
			models.TeamB: ComputeDistribution(bCount, aCount, missed, match.EntryPoints),
		},
	})
}

// ListSeriesMatchesForUser handles GET /series/:id/matches: every match in the
// series with the caller's own prediction state and window labels.
func (s *MatchService) ListSeriesMatchesForUser(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	seriesID := c.Params("id")

	var series models.Series
	if err := s.DB.First(&series, "id = ?", seriesID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": ErrSeriesNotFound.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var matches []models.Match
	if err := s.DB.Where("series_id = ?", seriesID).
		Order("start_time_utc ASC").
		Find(&matches).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch matches"})
	}

	matchIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
	}
	predByMatch, err := s.Preds.GetUserPredictions(userID, matchIDs)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch predictions"})
	}

	now := time.Now()
	views := make([]matchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, buildMatchView(m, now, predByMatch[m.ID]))
	}
	return c.JSON(fiber.Map{"series": series, "matches": views})
}

// GetMatchDetail handles GET /series/:id/matches/:match_id. Everyone's picks
// stay hidden until the window closes or the match starts; after completion
// the response includes declared winners/losers and the caller's net points.
func (s *MatchService) GetMatchDetail(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	seriesID := c.Params("id")
	matchID := c.Params("match_id")

	var match models.Match
	if err := s.DB.Where("id = ? AND series_id = ?", matchID, seriesID).
		First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	now := time.Now()
	deadlinePassed := utils.DeadlinePassed(match.StartTimeUTC, match.CutoffMins, now)
	started := match.Status != models.MatchStatusScheduled ||
		utils.MatchStarted(match.StartTimeUTC, now)
	showAll := deadlinePassed || started

	var myPred *models.Prediction
	var pred models.Prediction
	if err := s.DB.Where("match_id = ? AND user_id = ?", matchID, userID).
		First(&pred).Error; err == nil {
		myPred = &pred
	}

	type predRow struct {
		UserID      string `json:"user_id"`
		PickedTeam  string `json:"picked_team"`
		DisplayName string `json:"display_name"`
	}
	var allPreds []predRow
	if showAll {
		if err := s.DB.Model(&models.Prediction{}).
			Select("predictions.user_id, predictions.picked_team, users.display_name").
			Joins("JOIN users ON users.id = predictions.user_id").
			Where("predictions.match_id = ?", matchID).
			Scan(&allPreds).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error"})
		}
	}

	memberIDs, err := membersOf(s.DB, match.SeriesID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	resp := fiber.Map{
		"match":           buildMatchView(match, now, ""),
		"my_prediction":   myPred,
		"all_predictions": allPreds,
		"members_count":   len(memberIDs),
		"deadline_passed": deadlinePassed,
		"started":         started,
	}

	// Probable outcome preview: only between window close and declaration.
	if showAll && !match.Status.Terminal() {
		aCount, bCount := 0, 0
		for _, p := range allPreds {
			if p.PickedTeam == models.TeamA {
				aCount++
			} else {
				bCount++
			}
		}
		missed := len(memberIDs) - len(allPreds)
		if missed < 0 {
			missed = 0
		}
		resp["probable"] = fiber.Map{
			models.TeamA: ComputeDistribution(aCount, bCount, missed, match.EntryPoints),
			models.TeamB: ComputeDistribution(bCount, aCount, missed, match.EntryPoints),
		}
	}

	if match.Status == models.MatchStatusCompleted && match.Winner != nil {
		winners := []string{}
		losers := []string{}
		for _, p := range allPreds {
			if p.PickedTeam == *match.Winner {
				winners = append(winners, p.DisplayName)
			} else {
				losers = append(losers, p.DisplayName)
			}
		}
		resp["declared"] = fiber.Map{"winners": winners, "losers": losers}

		var myPoints float64
		if err := s.DB.Model(&models.LedgerEntry{}).
			Where("user_id = ? AND match_id = ?", userID, matchID).
			Select("COALESCE(SUM(points), 0)").
			Scan(&myPoints).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error"})
		}
		resp["my_match_points"] = myPoints
	}

	return c.JSON(resp)
}
