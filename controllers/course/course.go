package courseController

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

// Init wires the catalog controllers to their services.
func Init(l *learningService.Service, p *paymentService.Service) {
	learningSvc = l
	paymentSvc = p
}

// GetAllCourses lists published courses for the catalog page
func GetAllCourses(c *fiber.Ctx) error {
	page := c.Locals("page").(int)
	limit := c.Locals("limit").(int)
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).
		Where("status = ? AND is_deleted = ?", courseModels.StatusPublished, false)

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Preload("Category").
		Order("order_index asc, title asc").
		Offset(offset).Limit(limit).
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

// GetCourseDetails gets course details with modules and published lessons
func GetCourseDetails(c *fiber.Ctx) error {
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
		Preload("Category").First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Get modules with their published lessons
	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&modules)

	type ModuleWithLessons struct {
		courseModels.Module
		Lessons []courseModels.Lesson `json:"lessons"`
	}

	result := make([]ModuleWithLessons, len(modules))
	for i, module := range modules {
		result[i] = ModuleWithLessons{Module: module}
		database.Database.Db.Where("module_id = ? AND is_deleted = ? AND status = ?", module.ID, false, courseModels.StatusPublished).
			Order("order_index asc").Find(&result[i].Lessons)
	}

	// Check if user is enrolled
	var enrollment learningModels.Enrollment
	isEnrolled := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		First(&enrollment).Error == nil

	enrollmentCount, _ := learningSvc.CountCourseEnrollments(uint(courseID))

	response := fiber.Map{
		"course":           course,
		"modules":          result,
		"is_enrolled":      isEnrolled,
		"has_access":       paymentSvc.CanAccessCourse(userID, &course),
		"enrollment_count": enrollmentCount,
	}
	if isEnrolled {
		response["enrollment"] = enrollment
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", response)
}
