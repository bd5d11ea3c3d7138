package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"academy/database"
	"academy/models"
)

// AdminOnly checks the user's role against the database rather than
// trusting the token claim, so revoked admins are cut off immediately.
func AdminOnly(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		}
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
	}

	if user.Role != "ADMIN" {
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}

	return c.Next()
}
