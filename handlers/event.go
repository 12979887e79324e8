// handlers/event.go
package handlers

import (
	"competition-entry-system/middleware"
	"competition-entry-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/events", eventService.GetAllEvents)
	app.Get("/events/mini", eventService.GetAllEventsMini)
	app.Get("/events/:id", eventService.GetEventByID)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Event configuration (organizer only)
	organizer := secured.Group("/", middleware.RequireRole("organizer"))
	organizer.Post("/events", eventService.CreateEvent)
	organizer.Post("/events/:id/check-update", eventService.CheckEventUpdate) // dry-run safety verdict
	organizer.Put("/events/:id", eventService.UpdateEvent)                    // safety-enforced update
	organizer.Patch("/events/:id/status", eventService.UpdateEventStatus)
	organizer.Delete("/events/:id", eventService.DeleteEvent)
}
