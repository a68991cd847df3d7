// handlers/admin_routes.go
package handlers

import (
	"travel-predict-system/middleware"
	"travel-predict-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes wires the organizer surface under /admin. Requires user
// context plus the admin role.
func SetupAdminRoutes(
	app *fiber.App,
	userService *services.UserService,
	seriesService *services.SeriesService,
	matchService *services.MatchService,
	settlementService *services.SettlementService,
) {
	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	// Users
	admin.Post("/users", userService.CreateUser)
	admin.Get("/users", userService.SearchUsers)
	admin.Get("/users/:id", userService.GetUser)

	// Series CRUD and membership
	admin.Get("/series", seriesService.GetAllSeries)
	admin.Post("/series", seriesService.CreateSeries)
	admin.Put("/series/:id", seriesService.UpdateSeries)
	admin.Delete("/series/:id", seriesService.DeleteSeries)
	admin.Patch("/series/:id/lock", seriesService.LockSeries)
	admin.Get("/series/:id/members", seriesService.ListMembers)
	admin.Post("/series/:id/members", seriesService.AddMember)
	admin.Delete("/series/:id/members/:user_id", seriesService.RemoveMember)

	// Matches
	admin.Get("/series/:id/matches", matchService.ListSeriesMatches)
	admin.Post("/series/:id/matches", matchService.CreateMatch)
	admin.Put("/series/:id/matches/:match_id", matchService.UpdateMatch)
	admin.Delete("/matches/:match_id", matchService.DeleteMatch)
	admin.Get("/matches/:match_id/planner", matchService.GetPlanner)

	// Settlement
	admin.Post("/matches/:id/declare", settlementService.DeclareMatchEndpoint)
	admin.Post("/matches/:id/reset", settlementService.ResetMatchEndpoint)
}
