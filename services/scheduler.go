// services/scheduler.go
package services

import (
	"log"
	"time"

	"travel-predict-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartStatusScheduler flips matches from scheduled to live once their start
// time passes. Predictions are already barred by the cutoff check; this keeps
// the stored status in step with the clock for list views and the planner.
func (s *MatchService) StartStatusScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var matches []models.Match
			now := time.Now().UTC()
			err := s.DB.Where("status = ? AND start_time_utc <= ?", models.MatchStatusScheduled, now).
				Find(&matches).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, m := range matches {
				m.Status = models.MatchStatusLive
				if err := s.DB.Save(&m).Error; err != nil {
					log.Printf("[Scheduler] Failed to mark match %s live: %v", m.ID, err)
				} else {
					log.Printf("[Scheduler] Match now live: %s", m.Name)
				}
			}
		}),
	)
}
