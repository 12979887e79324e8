// handlers/dancer.go
package handlers

import (
	"competition-entry-system/middleware"
	"competition-entry-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDancerRoutes(app *fiber.App, dancerService *services.DancerService) {
	// 🔓 Public search (used by entry forms)
	app.Get("/dancers/search", dancerService.SearchDancers)

	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/dancers", dancerService.RegisterDancer)
	secured.Get("/dancers/:id", dancerService.GetDancerByID)
	secured.Post("/studios", dancerService.CreateStudio)
	secured.Get("/studios/:id/dancers", dancerService.GetStudioDancers)

	// 🔒 Admin-only approval
	admin := secured.Group("/admin", middleware.RequireRole("admin"))
	admin.Post("/dancers/:id/approve", dancerService.ApproveDancer)
	admin.Post("/studios/:id/approve", dancerService.ApproveStudio)
}
