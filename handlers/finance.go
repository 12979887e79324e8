// handlers/finance.go
package handlers

import (
	"competition-entry-system/middleware"
	"competition-entry-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupFinanceRoutes(app *fiber.App, financeService *services.FinanceService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/events/:id/dancers/:dancer_id/finance", financeService.GetDancerSummary)

	organizer := secured.Group("/", middleware.RequireRole("organizer"))
	organizer.Post("/entries/:id/payments", financeService.RecordPayment)
	organizer.Get("/events/:id/payments", financeService.GetEventPayments)
	organizer.Get("/events/:id/reconciliation", financeService.GetEventReconciliation)
	organizer.Post("/events/:id/reconciliation/archive", financeService.ArchiveEventReconciliation)
}
