package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	courseController "academy/controllers/course"
	learningController "academy/controllers/learning"
	"academy/middleware"
	courseValidator "academy/validators/course"
)

// SetupCourseRoutes sets up all user-facing course and learning routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Catalog
	courseGroup.Get("/list", middleware.JWTMiddleware, courseValidator.CourseList(), courseController.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, courseValidator.GetCourseDetail(), courseController.GetCourseDetails)

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, courseValidator.EnrollCourse(), learningController.EnrollInCourse)

	// Lesson completion and progress
	courseGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, courseValidator.CompleteLesson(), learningController.CompleteLesson)
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, courseValidator.GetCourseProgress(), learningController.GetUserProgress)

	// User enrollments and certificates
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, learningController.GetUserEnrollmentsList)
	userGroup.Get("/certificates", middleware.JWTMiddleware, learningController.GetUserCertificates)
}
