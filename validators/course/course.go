package courseValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"academy/middleware"
)

// CourseList validates optional pagination query parameters.
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		page := 1
		limit := 20
		if reqData.Page != nil && *reqData.Page > 0 {
			page = *reqData.Page
		}
		if reqData.Limit != nil && *reqData.Limit > 0 && *reqData.Limit <= 100 {
			limit = *reqData.Limit
		}

		c.Locals("page", page)
		c.Locals("limit", limit)
		return c.Next()
	}
}

// GetCourseDetail validates the course ID path parameter.
func GetCourseDetail() fiber.Handler {
	return courseIDParam("id")
}

// EnrollCourse validates the course ID path parameter for enrollment.
func EnrollCourse() fiber.Handler {
	return courseIDParam("id")
}

// GetCourseProgress validates the course ID path parameter.
func GetCourseProgress() fiber.Handler {
	return courseIDParam("course_id")
}

func courseIDParam(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params(name))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// CompleteLesson validates course and lesson ID path parameters.
func CompleteLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := strconv.Atoi(strings.TrimSpace(c.Params("course_id")))
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		lessonID, err := strconv.Atoi(strings.TrimSpace(c.Params("lesson_id")))
		if err != nil || lessonID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}
