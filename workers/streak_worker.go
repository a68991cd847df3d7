package workers

import (
	"context"
	"log"
	"time"

	"travel-predict-system/models"
	"travel-predict-system/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PollStreaks periodically recomputes win/loss streak snapshots for every
// user with at least one settled prediction and upserts them into
// user_streaks. Dashboards read the snapshot instead of walking the full
// prediction history on every request.
func PollStreaks(ctx context.Context, db *gorm.DB, pollInterval time.Duration) {
	log.Println("[STREAKS] Starting streak snapshot worker...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[STREAKS] Streak worker stopped.")
			return
		case <-ticker.C:
			if err := recomputeStreaks(db); err != nil {
				log.Printf("[STREAKS] Recompute failed: %v", err)
			}
		}
	}
}

func recomputeStreaks(db *gorm.DB) error {
	type wlRow struct {
		UserID     string
		PickedTeam string
		Winner     string
	}
	var rows []wlRow
	err := db.Model(&models.Prediction{}).
		Select("predictions.user_id, predictions.picked_team, matches.winner").
		Joins("JOIN matches ON matches.id = predictions.match_id").
		Where("matches.status = ?", models.MatchStatusCompleted).
		Order("predictions.user_id, matches.start_time_utc ASC").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	// Rows arrive grouped by user, so one pass builds each user's sequence.
	sequences := make(map[string][]string)
	for _, r := range rows {
		outcome := "L"
		if r.PickedTeam == r.Winner {
			outcome = "W"
		}
		sequences[r.UserID] = append(sequences[r.UserID], outcome)
	}

	now := time.Now().UTC()
	snapshots := make([]models.UserStreak, 0, len(sequences))
	for userID, seq := range sequences {
		st := services.ComputeStreaks(seq)
		snapshots = append(snapshots, models.UserStreak{
			UserID:        userID,
			CurrentStreak: st.CurrentStreak,
			LongestWin:    st.LongestWin,
			LongestLoss:   st.LongestLoss,
			ComputedAt:    now,
		})
	}

	err = db.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_streak",
				"longest_win",
				"longest_loss",
				"computed_at",
			}),
		},
	).Create(&snapshots).Error
	if err != nil {
		return err
	}

	log.Printf("[STREAKS] Refreshed %d streak snapshot(s)", len(snapshots))
	return nil
}
