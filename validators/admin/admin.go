package adminValidator

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"academy/middleware"
)

var validate = validator.New()

// ReviewRequest carries the optional reviewer notes for approve/reject.
type ReviewRequest struct {
	AdminNotes string `json:"admin_notes" validate:"max=2000"`
}

// ReviewSubmission validates the submission ID parameter and optional
// review body.
func ReviewSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		submissionID, err := strconv.Atoi(strings.TrimSpace(c.Params("id")))
		if err != nil || submissionID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Submission ID!", nil)
		}

		reqData := new(ReviewRequest)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"admin_notes": "Admin notes must be at most 2000 characters!",
			})
		}

		c.Locals("submissionID", submissionID)
		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}

// GrantEntitlementRequest is the manual course unlock body.
type GrantEntitlementRequest struct {
	UserID   uint   `json:"user_id" validate:"required,gt=0"`
	CourseID uint   `json:"course_id" validate:"required,gt=0"`
	Message  string `json:"message" validate:"max=500"`
}

// GrantEntitlement validates the manual grant body.
func GrantEntitlement() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GrantEntitlementRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "UserID":
					errors["user_id"] = "User ID is required!"
				case "CourseID":
					errors["course_id"] = "Course ID is required!"
				case "Message":
					errors["message"] = "Message must be at most 500 characters!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGrant", reqData)
		return c.Next()
	}
}

// AuditLogList validates pagination for the audit log view.
func AuditLogList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		page := 1
		limit := 50
		if reqData.Page != nil && *reqData.Page > 0 {
			page = *reqData.Page
		}
		if reqData.Limit != nil && *reqData.Limit > 0 && *reqData.Limit <= 200 {
			limit = *reqData.Limit
		}

		c.Locals("page", page)
		c.Locals("limit", limit)
		return c.Next()
	}
}
