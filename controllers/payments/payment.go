package paymentController

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"academy/config"
	"academy/database"
	"academy/middleware"
	"academy/models"
	courseModels "academy/models/course"
	paymentModels "academy/models/payments"
	paymentService "academy/services/payments"
	paymentValidator "academy/validators/payments"
)

var paymentSvc *paymentService.Service

// Init wires the payment controllers to the payments service.
func Init(p *paymentService.Service) {
	paymentSvc = p
}

// SubmitPaymentProof accepts payment evidence for a paid course.
func SubmitPaymentProof(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	reqData := c.Locals("validatedProofSubmission").(*paymentValidator.SubmitProofRequest)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, courseModels.StatusPublished).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	if course.IsFree() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This course is free. You can enroll directly!", nil)
	}

	// Store the uploaded proof file if one was sent
	proofFile := ""
	if file, err := c.FormFile("proof_file"); err == nil {
		ext := filepath.Ext(file.Filename)
		name := strings.ReplaceAll(uuid.New().String(), "-", "") + ext
		dest := filepath.Join(config.AppConfig.UploadDir, "payment_proofs", name)
		if err := c.SaveFile(file, dest); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store proof file!", nil)
		}
		proofFile = dest
	}

	result, err := paymentSvc.SubmitCoursePaymentProof(&user, &course, proofFile, reqData.ProofURL, reqData.Notes)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit payment proof!", nil)
	}

	statusCode := fiber.StatusCreated
	if !result.Success {
		statusCode = fiber.StatusConflict
	}
	return middleware.JsonResponse(c, statusCode, result.Success, result.Message, result.Submission)
}

// GetMySubmissions lists the current user's payment proof submissions.
func GetMySubmissions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var submissions []paymentModels.PaymentProofSubmission
	if err := database.Database.Db.Where("user_id = ?", userID).
		Order("submitted_at desc").
		Find(&submissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submissions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", fiber.Map{
		"submissions": submissions,
	})
}

// GetUnlockStatus tells the client whether the course is accessible and
// whether a submission is pending review.
func GetUnlockStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var pending paymentModels.PaymentProofSubmission
	hasPending := database.Database.Db.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, courseID, paymentModels.ProofPending).First(&pending).Error == nil

	message := "Unlock status fetched successfully!"
	if hasPending {
		message = fmt.Sprintf("Payment proof %d is pending review", pending.ID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"has_access":     paymentSvc.CanAccessCourse(userID, &course),
		"pending_review": hasPending,
	})
}
