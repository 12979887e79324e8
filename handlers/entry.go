// handlers/entry.go
package handlers

import (
	"competition-entry-system/middleware"
	"competition-entry-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEntryRoutes(app *fiber.App, entryService *services.EntryService, feeService *services.FeeService) {
	// 🔓 Public: program listing for published events
	app.Get("/events/:id/entries", entryService.GetEntriesByEvent)
	app.Get("/entries/:id", entryService.GetEntryByID)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/entries/quote", feeService.QuoteEntryFee) // read-only fee preview
	secured.Post("/events/:id/entries", entryService.SubmitEntry)
	secured.Get("/entries/:id/shares", entryService.GetEntryShares)
	secured.Get("/dancers/:dancer_id/entries", entryService.GetEntriesByDancer)
	secured.Delete("/entries/:id", entryService.WithdrawEntry)

	// Organizer-only: approval assigns the program item number
	organizer := secured.Group("/", middleware.RequireRole("organizer"))
	organizer.Post("/entries/:id/approve", entryService.ApproveEntry)
}
