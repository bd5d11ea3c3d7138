package adminRoutes

import (
	"github.com/gofiber/fiber/v2"

	adminController "academy/controllers/admin"
	"academy/middleware"
	adminValidator "academy/validators/admin"
)

// SetupAdminRoutes sets up the payment review and entitlement admin routes
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.AdminOnly)

	adminGroup.Get("/payment-proofs/pending", adminController.ListPendingSubmissions)
	adminGroup.Post("/payment-proofs/:id/approve", adminValidator.ReviewSubmission(), adminController.ApprovePaymentProof)
	adminGroup.Post("/payment-proofs/:id/reject", adminValidator.ReviewSubmission(), adminController.RejectPaymentProof)

	adminGroup.Post("/entitlements/grant", adminValidator.GrantEntitlement(), adminController.GrantEntitlement)

	adminGroup.Get("/audit-logs", adminValidator.AuditLogList(), adminController.ListAuditLogs)
}
