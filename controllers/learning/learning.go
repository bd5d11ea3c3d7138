package learningController

import (
	"github.com/gofiber/fiber/v2"

	"academy/database"
	"academy/middleware"
	"academy/models"
	courseModels "academy/models/course"
	learningModels "academy/models/learning"
	learningService "academy/services/learning"
	paymentService "academy/services/payments"
)

var (
	learningSvc *learningService.Service
	paymentSvc  *paymentService.Service
)

// Init wires the learning controllers to their services.
func Init(l *learningService.Service, p *paymentService.Service) {
	learningSvc = l
	paymentSvc = p
}

// EnrollInCourse enrolls the current user in a published course. Paid
// courses require an entitlement; without one the user is pointed to
// the payment proof flow and no enrollment row is created.
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, courseModels.StatusPublished).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	if !paymentSvc.CanAccessCourse(userID, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false,
			"This is a paid course. Please submit your payment proof to unlock it.", fiber.Map{
				"requires_payment": true,
				"price":            course.Price,
			})
	}

	result, err := learningSvc.EnrollUserInCourse(&user, &course)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	statusCode := fiber.StatusOK
	if !result.Success {
		statusCode = fiber.StatusConflict
	}
	return middleware.JsonResponse(c, statusCode, result.Success, result.Message, result.Enrollment)
}

// CompleteLesson marks a lesson complete and returns the recomputed
// course progress.
func CompleteLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	// Check enrollment first
	var enrollment learningModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND status = ? AND is_deleted = ?",
		userID, courseID, learningModels.EnrollmentActive, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	// Lesson must be published and belong to the course
	var lesson courseModels.Lesson
	if err := database.Database.Db.
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("lessons.id = ? AND lessons.is_deleted = ? AND lessons.status = ?", lessonID, false, courseModels.StatusPublished).
		Where("modules.course_id = ? AND modules.is_deleted = ?", courseID, false).
		First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if _, err := learningSvc.CompleteLesson(userID, &lesson); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson as completed!", nil)
	}

	progress, err := learningSvc.GetCourseProgress(userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed successfully!", progress)
}

// GetUserProgress returns the user's progress in a course.
func GetUserProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	progress, err := learningSvc.GetCourseProgress(userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}
	if progress == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No progress found. Enroll in this course first!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", progress)
}

// GetUserEnrollmentsList lists the current user's enrollments.
func GetUserEnrollmentsList(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollments, err := learningSvc.GetUserEnrollments(userID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
	})
}

// GetUserCertificates lists the current user's issued certificates.
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certificates, err := learningSvc.GetUserCertificates(userID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	type CertificateWithCourse struct {
		learningModels.Certificate
		CourseTitle string `json:"course_title"`
	}

	result := make([]CertificateWithCourse, len(certificates))
	for i, cert := range certificates {
		result[i] = CertificateWithCourse{Certificate: cert, CourseTitle: cert.Course.Title}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": result,
	})
}
