package paymentRoutes

import (
	"github.com/gofiber/fiber/v2"

	paymentController "academy/controllers/payments"
	"academy/middleware"
	courseValidator "academy/validators/course"
	paymentValidator "academy/validators/payments"
)

// SetupPaymentRoutes sets up the user-facing payment proof routes
func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payments")

	paymentGroup.Post("/course/:id/proof", middleware.JWTMiddleware, paymentValidator.SubmitProof(), paymentController.SubmitPaymentProof)
	paymentGroup.Get("/course/:id/status", middleware.JWTMiddleware, courseValidator.GetCourseDetail(), paymentController.GetUnlockStatus)
	paymentGroup.Get("/submissions", middleware.JWTMiddleware, paymentController.GetMySubmissions)
}
