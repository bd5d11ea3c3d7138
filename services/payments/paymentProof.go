package payments

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"academy/cache"
	"academy/models"
	courseModels "academy/models/course"
	learningModels "academy/models/learning"
	paymentModels "academy/models/payments"
	"academy/realtime"
	"academy/services/audit"
	"academy/tasks"
	"academy/utils"
)

// ErrNotCourseProof marks an approval call against a submission that
// does not target a course. That is a caller bug, not a business
// outcome, so it surfaces as an error.
var ErrNotCourseProof = errors.New("submission is not a course payment proof")

// SubmitResult carries the outcome of a proof submission. Business
// no-ops (duplicate pending, already unlocked) are values, not errors.
type SubmitResult struct {
	Success    bool                                   `json:"success"`
	Message    string                                 `json:"message"`
	Submission *paymentModels.PaymentProofSubmission `json:"submission,omitempty"`
}

// SubmitCoursePaymentProof records payment evidence for a paid course.
// The amount is snapshotted from the course price at submission time.
// Evidence presence (file or URL) is validated before this call.
func (s *Service) SubmitCoursePaymentProof(user *models.User, course *courseModels.Course, proofFile, proofURL, notes string) (SubmitResult, error) {
	courseID := course.ID

	if s.HasEntitlement(user.ID, paymentModels.ProductTypeCourse, &courseID, nil) {
		return SubmitResult{
			Success: false,
			Message: "This course is already unlocked for your account",
		}, nil
	}

	// Only one actionable PENDING submission per (user, course). Policy
	// check, not a database constraint.
	var pending paymentModels.PaymentProofSubmission
	err := s.DB.Where("user_id = ? AND course_id = ? AND status = ?", user.ID, courseID, paymentModels.ProofPending).
		First(&pending).Error
	if err == nil {
		return SubmitResult{
			Success:    false,
			Message:    "Your previous payment proof is still pending review",
			Submission: &pending,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SubmitResult{}, err
	}

	submission := paymentModels.PaymentProofSubmission{
		UserID:      user.ID,
		ProductType: paymentModels.ProductTypeCourse,
		CourseID:    &courseID,
		Amount:      course.Price,
		ProofFile:   proofFile,
		ProofURL:    proofURL,
		Notes:       notes,
		Status:      paymentModels.ProofPending,
		SubmittedAt: time.Now(),
	}
	if err := s.DB.Create(&submission).Error; err != nil {
		return SubmitResult{}, err
	}

	// Keep reviewers informed; best-effort only.
	go utils.NotifyAdminWebhook("payment_proof.submitted", map[string]interface{}{
		"submission_id": submission.ID,
		"user_id":       user.ID,
		"course_id":     courseID,
		"amount":        submission.Amount,
	})

	return SubmitResult{
		Success:    true,
		Message:    "Payment proof submitted and pending review",
		Submission: &submission,
	}, nil
}

// ApproveCoursePaymentProof runs the admin approval as one atomic unit:
// entitlement grant, enrollment, progress row, forced ACTIVE status,
// submission review fields and the audit row commit or roll back
// together. Re-approving an APPROVED submission is a no-op.
func (s *Service) ApproveCoursePaymentProof(submission *paymentModels.PaymentProofSubmission, admin *models.User, adminNotes string) error {
	if submission.Status == paymentModels.ProofApproved {
		return nil
	}
	if submission.ProductType != paymentModels.ProductTypeCourse || submission.CourseID == nil {
		return ErrNotCourseProof
	}

	var course courseModels.Course
	if err := s.DB.Where("id = ?", *submission.CourseID).First(&course).Error; err != nil {
		return err
	}
	var user models.User
	if err := s.DB.Where("id = ?", submission.UserID).First(&user).Error; err != nil {
		return err
	}

	adminID := admin.ID
	var enrolled bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := grantEntitlementTx(tx, user.ID, paymentModels.ProductTypeCourse, submission.CourseID, nil, paymentModels.EntitlementManual, &adminID); err != nil {
			return err
		}

		_, created, reactivated, err := s.Learning.EnrollTx(tx, &user, &course)
		if err != nil {
			return err
		}
		enrolled = created || reactivated

		// Covers a CANCELLED state left behind outside the reactivation
		// path: approval always lands the user on an ACTIVE enrollment.
		if err := tx.Model(&learningModels.Enrollment{}).
			Where("user_id = ? AND course_id = ?", user.ID, course.ID).
			Update("status", learningModels.EnrollmentActive).Error; err != nil {
			return err
		}

		now := time.Now()
		submission.Status = paymentModels.ProofApproved
		submission.ReviewedBy = &adminID
		submission.ReviewedAt = &now
		if adminNotes != "" {
			submission.AdminNotes = adminNotes
		}
		if err := tx.Save(submission).Error; err != nil {
			return err
		}

		return audit.Record(tx, &adminID,
			"payment_proof.approved",
			"course",
			strconv.FormatUint(uint64(course.ID), 10),
			fmt.Sprintf("Approved payment proof submission %d", submission.ID),
			map[string]interface{}{
				"submission_id": submission.ID,
				"user_id":       user.ID,
				"course_id":     course.ID,
			},
		)
	})
	if err != nil {
		return err
	}

	// Post-commit only: invalidate the keys the transaction touched,
	// then queue the best-effort notification.
	s.Cache.Delete(
		cache.UserEnrollmentsKey(user.ID),
		cache.CourseProgressKey(user.ID, course.ID),
		cache.CourseEnrollmentsKey(course.ID),
	)
	if enrolled {
		s.Tasks.Enqueue(tasks.TaskSendEnrollmentEmail, map[string]interface{}{
			"user_id":   user.ID,
			"course_id": course.ID,
		})
	}
	s.Tasks.Enqueue(tasks.TaskSendPaymentApprovalEmail, map[string]interface{}{
		"user_id":   user.ID,
		"course_id": course.ID,
	})

	return nil
}

// RejectPaymentProof marks the submission rejected and records the
// decision. No entitlement or enrollment is touched. Re-rejecting is a
// no-op.
func (s *Service) RejectPaymentProof(submission *paymentModels.PaymentProofSubmission, admin *models.User, adminNotes string) error {
	if submission.Status == paymentModels.ProofRejected {
		return nil
	}

	subjectType, subjectID := rejectedSubject(submission)

	adminID := admin.ID
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		submission.Status = paymentModels.ProofRejected
		submission.ReviewedBy = &adminID
		submission.ReviewedAt = &now
		if adminNotes != "" {
			submission.AdminNotes = adminNotes
		}
		if err := tx.Save(submission).Error; err != nil {
			return err
		}

		return audit.Record(tx, &adminID,
			"payment_proof.rejected",
			subjectType,
			subjectID,
			fmt.Sprintf("Rejected payment proof submission %d", submission.ID),
			map[string]interface{}{
				"submission_id": submission.ID,
				"user_id":       submission.UserID,
				"course_id":     submission.CourseID,
				"project_id":    submission.ProjectID,
			},
		)
	})
	if err != nil {
		return err
	}

	s.Hub.Emit(realtime.NotificationChannel(submission.UserID), map[string]interface{}{
		"type":          "payment_rejected",
		"message":       "Your payment proof was rejected. Please review and resubmit.",
		"submission_id": submission.ID,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})

	return nil
}

func rejectedSubject(submission *paymentModels.PaymentProofSubmission) (string, string) {
	if submission.CourseID != nil {
		return "course", strconv.FormatUint(uint64(*submission.CourseID), 10)
	}
	if submission.ProjectID != nil {
		return "project", strconv.FormatUint(uint64(*submission.ProjectID), 10)
	}
	return "", ""
}
