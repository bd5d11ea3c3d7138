package authRoutes

import (
	"github.com/gofiber/fiber/v2"

	authController "academy/controllers/auth"
)

// SetupAuthRoutes sets up signup and login
func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authController.Signup)
	authGroup.Post("/login", authController.Login)
}
