package adminController

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"academy/database"
	"academy/middleware"
	"academy/models"
	auditModels "academy/models/audit"
	paymentModels "academy/models/payments"
	paymentService "academy/services/payments"
	adminValidator "academy/validators/admin"
)

var paymentSvc *paymentService.Service

// Init wires the admin controllers to the payments service.
func Init(p *paymentService.Service) {
	paymentSvc = p
}

func currentAdmin(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, errors.New("unauthorized")
	}
	var admin models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// ListPendingSubmissions returns the review queue, oldest first.
func ListPendingSubmissions(c *fiber.Ctx) error {
	var submissions []paymentModels.PaymentProofSubmission
	if err := database.Database.Db.Where("status = ?", paymentModels.ProofPending).
		Order("submitted_at asc").
		Find(&submissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submissions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending submissions fetched successfully!", fiber.Map{
		"submissions": submissions,
	})
}

// ApprovePaymentProof approves a submission: entitlement, enrollment,
// progress and the audit row land atomically in the payments service.
func ApprovePaymentProof(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	submissionID := c.Locals("submissionID").(int)
	review := c.Locals("validatedReview").(*adminValidator.ReviewRequest)

	var submission paymentModels.PaymentProofSubmission
	if err := database.Database.Db.Where("id = ?", submissionID).First(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found!", nil)
	}

	if submission.Status == paymentModels.ProofApproved {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission is already approved!", submission)
	}

	if err := paymentSvc.ApproveCoursePaymentProof(&submission, admin, review.AdminNotes); err != nil {
		if errors.Is(err, paymentService.ErrNotCourseProof) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Submission is not a course payment proof!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve submission!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment proof approved successfully!", submission)
}

// RejectPaymentProof rejects a submission and records the decision.
func RejectPaymentProof(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	submissionID := c.Locals("submissionID").(int)
	review := c.Locals("validatedReview").(*adminValidator.ReviewRequest)

	var submission paymentModels.PaymentProofSubmission
	if err := database.Database.Db.Where("id = ?", submissionID).First(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found!", nil)
	}

	if submission.Status == paymentModels.ProofRejected {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission is already rejected!", submission)
	}

	if err := paymentSvc.RejectPaymentProof(&submission, admin, review.AdminNotes); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reject submission!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment proof rejected successfully!", submission)
}

// GrantEntitlement manually unlocks a course for a user.
func GrantEntitlement(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedGrant").(*adminValidator.GrantEntitlementRequest)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.UserID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	entitlement, err := paymentSvc.AdminGrantCourseEntitlement(reqData.UserID, reqData.CourseID, admin, reqData.Message)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grant entitlement!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Entitlement granted successfully!", entitlement)
}

// ListAuditLogs returns the audit trail, newest first.
func ListAuditLogs(c *fiber.Ctx) error {
	page := c.Locals("page").(int)
	limit := c.Locals("limit").(int)
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&auditModels.AuditLog{})
	if action := c.Query("action"); action != "" {
		db = db.Where("action = ?", action)
	}

	var total int64
	db.Count(&total)

	var logs []auditModels.AuditLog
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch audit logs!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Audit logs fetched successfully!", fiber.Map{
		"logs": logs,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
