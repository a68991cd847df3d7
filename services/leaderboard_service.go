package services

import (
	"fmt"

	"travel-predict-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LeaderboardService aggregates the ledger for dashboards, leaderboards and
// streaks. It only reads ledger entries; writes belong to the settlement
// service.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// LedgerFilter narrows a ledger query; zero values mean "no filter".
type LedgerFilter struct {
	UserID   string
	MatchID  string
	SeriesID string
}

// GetLedgerEntries returns ledger entries matching the filter, newest first.
func (s *LeaderboardService) GetLedgerEntries(f LedgerFilter) ([]models.LedgerEntry, error) {
	q := s.DB.Model(&models.LedgerEntry{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.MatchID != "" {
		q = q.Where("match_id = ?", f.MatchID)
	}
	if f.SeriesID != "" {
		q = q.Where("series_id = ?", f.SeriesID)
	}
	var entries []models.LedgerEntry
	err := q.Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// GetLedgerEndpoint handles GET /ledger?user_id=&match_id=&series_id=.
func (s *LeaderboardService) GetLedgerEndpoint(c *fiber.Ctx) error {
	entries, err := s.GetLedgerEntries(LedgerFilter{
		UserID:   c.Query("user_id"),
		MatchID:  c.Query("match_id"),
		SeriesID: c.Query("series_id"),
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch ledger"})
	}
	return c.JSON(entries)
}

// LeaderboardRow is one user's aggregate points position.
type LeaderboardRow struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Points      float64 `json:"points"`
}

// GetLeaderboardEndpoint handles GET /leaderboard, optionally scoped to a
// series via ?series_id=.
func (s *LeaderboardService) GetLeaderboardEndpoint(c *fiber.Ctx) error {
	seriesID := c.Query("series_id")

	ledgerJoin := "LEFT JOIN ledger_entries pl ON pl.user_id = users.id"
	args := []interface{}{}
	if seriesID != "" {
		ledgerJoin += " AND pl.series_id = ?"
		args = append(args, seriesID)
	}

	var rows []LeaderboardRow
	err := s.DB.Model(&models.User{}).
		Select("users.id AS user_id, users.display_name, COALESCE(SUM(pl.points), 0) AS points").
		Joins(ledgerJoin, args...).
		Group("users.id, users.display_name").
		Order("points DESC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch leaderboard"})
	}
	return c.JSON(fiber.Map{"series_id": seriesID, "leaderboard": rows})
}

// GetDashboardEndpoint handles GET /dashboard: the caller's total points,
// per-series win/loss stats and current streaks.
func (s *LeaderboardService) GetDashboardEndpoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var totalPoints float64
	if err := s.DB.Model(&models.LedgerEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&totalPoints).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch points"})
	}

	type SeriesStat struct {
		SeriesID  string `json:"series_id"`
		Name      string `json:"name"`
		Wins      int64  `json:"wins"`
		Losses    int64  `json:"losses"`
		Completed int64  `json:"completed"`
	}
	var stats []SeriesStat
	err := s.DB.Model(&models.Series{}).
		Select(`series.id AS series_id, series.name,
			COALESCE(SUM(CASE WHEN p.picked_team = m.winner THEN 1 ELSE 0 END), 0) AS wins,
			COALESCE(SUM(CASE WHEN p.picked_team IS NOT NULL AND m.winner IS NOT NULL AND p.picked_team != m.winner THEN 1 ELSE 0 END), 0) AS losses,
			COALESCE(SUM(CASE WHEN m.status = 'completed' THEN 1 ELSE 0 END), 0) AS completed`).
		Joins("JOIN series_members sm ON sm.series_id = series.id AND sm.user_id = ?", userID).
		Joins("LEFT JOIN matches m ON m.series_id = series.id").
		Joins("LEFT JOIN predictions p ON p.match_id = m.id AND p.user_id = ?", userID).
		Group("series.id, series.name").
		Order("series.start_date_utc DESC").
		Scan(&stats).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch series stats"})
	}

	streaks, err := s.userStreaks(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch results"})
	}

	return c.JSON(fiber.Map{
		"total_points": totalPoints,
		"series_stats": stats,
		"streaks":      streaks,
	})
}

// userStreaks serves the worker-maintained snapshot when present and falls
// back to computing from the prediction history (fresh user, or the worker
// has not ticked since the last settlement).
func (s *LeaderboardService) userStreaks(userID string) (Streaks, error) {
	var snap models.UserStreak
	if err := s.DB.First(&snap, "user_id = ?", userID).Error; err == nil {
		return Streaks{
			CurrentStreak: snap.CurrentStreak,
			LongestWin:    snap.LongestWin,
			LongestLoss:   snap.LongestLoss,
		}, nil
	}

	seq, err := s.resultSequence(userID)
	if err != nil {
		return Streaks{}, err
	}
	return ComputeStreaks(seq), nil
}

// resultSequence returns the user's W/L outcomes across completed matches,
// ordered by match start time.
func (s *LeaderboardService) resultSequence(userID string) ([]string, error) {
	type wlRow struct {
		PickedTeam string
		Winner     string
	}
	var rows []wlRow
	err := s.DB.Model(&models.Prediction{}).
		Select("predictions.picked_team, matches.winner").
		Joins("JOIN matches ON matches.id = predictions.match_id").
		Where("predictions.user_id = ? AND matches.status = ?", userID, models.MatchStatusCompleted).
		Order("matches.start_time_utc ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	seq := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.PickedTeam == r.Winner {
			seq = append(seq, "W")
		} else {
			seq = append(seq, "L")
		}
	}
	return seq, nil
}

// Streaks summarizes a W/L sequence.
type Streaks struct {
	CurrentStreak string `json:"current_streak"` // e.g. "3W", "2L", "-"
	LongestWin    int    `json:"longest_win"`
	LongestLoss   int    `json:"longest_loss"`
}

// ComputeStreaks walks an ordered W/L sequence and reports the running streak
// plus the longest win and loss runs.
func ComputeStreaks(seq []string) Streaks {
	current := 0
	currentType := ""
	longestWin, longestLoss := 0, 0

	for _, v := range seq {
		switch v {
		case "W":
			if currentType == "W" {
				current++
			} else {
				current = 1
				currentType = "W"
			}
			if current > longestWin {
				longestWin = current
			}
		case "L":
			if currentType == "L" {
				current++
			} else {
				current = 1
				currentType = "L"
			}
			if current > longestLoss {
				longestLoss = current
			}
		}
	}

	label := "-"
	if current > 0 {
		label = fmt.Sprintf("%d%s", current, currentType)
	}
	return Streaks{CurrentStreak: label, LongestWin: longestWin, LongestLoss: longestLoss}
}
