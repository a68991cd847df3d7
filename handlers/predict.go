// handlers/predict_routes.go
package handlers

import (
	"travel-predict-system/middleware"
	"travel-predict-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupPredictRoutes wires the player-facing surface. Every route requires
// user context from the gateway.
func SetupPredictRoutes(
	app *fiber.App,
	seriesService *services.SeriesService,
	matchService *services.MatchService,
	predictionService *services.PredictionService,
	leaderboardService *services.LeaderboardService,
) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Series the caller belongs to, with their matches
	secured.Get("/series", seriesService.GetMySeries)
	secured.Get("/series/:id/matches", matchService.ListSeriesMatchesForUser)
	secured.Get("/series/:id/matches/:match_id", matchService.GetMatchDetail)

	// Predictions
	secured.Post("/series/:id/matches/:match_id/predict", predictionService.SubmitPredictionEndpoint)

	// Scores
	secured.Get("/dashboard", leaderboardService.GetDashboardEndpoint)
	secured.Get("/leaderboard", leaderboardService.GetLeaderboardEndpoint)
	secured.Get("/ledger", leaderboardService.GetLedgerEndpoint)
}
