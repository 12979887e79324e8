// handlers/score.go
package handlers

import (
	"competition-entry-system/middleware"
	"competition-entry-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupScoreRoutes(app *fiber.App, scoreService *services.ScoreService) {
	// 🔓 Public: rankings and tallies are display surfaces
	app.Get("/events/:id/rankings", scoreService.GetEventRankings)
	app.Get("/entries/:id/tally", scoreService.GetEntryTally)

	// 🔐 Judges submit through the gateway with user context
	secured := app.Group("/", middleware.UserContextMiddleware())
	judge := secured.Group("/", middleware.RequireRole("judge"))
	judge.Post("/entries/:id/scores", scoreService.SubmitScore)
}
