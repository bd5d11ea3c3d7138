package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"academy/cache"
	"academy/database"
	"academy/models"
	auditModels "academy/models/audit"
	courseModels "academy/models/course"
	learningModels "academy/models/learning"
	paymentModels "academy/models/payments"
	"academy/realtime"
	learningService "academy/services/learning"
	"academy/tasks"
)

type recordingQueue struct {
	names []string
}

func (q *recordingQueue) Enqueue(name string, args map[string]interface{}) {
	q.names = append(q.names, name)
}

func newTestService(t *testing.T) (*Service, *recordingQueue) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)

	store := cache.NewMemoryStore()
	hub := realtime.NewHub()
	queue := &recordingQueue{}
	learningSvc := learningService.NewService(db, store, hub, tasks.NopQueue{}, time.Minute)
	return NewService(db, store, hub, queue, learningSvc), queue
}

func seedPaidCourse(t *testing.T, db *gorm.DB) *courseModels.Course {
	t.Helper()

	course := courseModels.Course{
		Slug:   "pro-course",
		Title:  "Pro Course",
		Price:  499,
		Status: courseModels.StatusPublished,
	}
	require.NoError(t, db.Create(&course).Error)

	module := courseModels.Module{CourseID: course.ID, Slug: "intro", Title: "Intro"}
	require.NoError(t, db.Create(&module).Error)

	lesson := courseModels.Lesson{
		ModuleID: module.ID,
		Slug:     "welcome",
		Title:    "Welcome",
		Status:   courseModels.StatusPublished,
	}
	require.NoError(t, db.Create(&lesson).Error)
	return &course
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := models.User{Name: "Test User", Email: email, Role: role, Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestSubmitCreatesPendingSubmission(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com", "USER")
	course := seedPaidCourse(t, svc.DB)

	result, err := svc.SubmitCoursePaymentProof(user, course, "", "https://pay.example.com/r/1", "paid via UPI")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.Submission)
	require.Equal(t, paymentModels.ProofPending, result.Submission.Status)
	require.InDelta(t, 499, result.Submission.Amount, 0.01)
}

func TestSubmitDuplicatePendingIsRejected(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com", "USER")
	course := seedPaidCourse(t, svc.DB)

	_, err := svc.SubmitCoursePaymentProof(user, course, "", "https://pay.example.com/r/1", "")
	require.NoError(t, err)

	second, err := svc.SubmitCoursePaymentProof(user, course, "", "https://pay.example.com/r/2", "")
	require.NoError(t, err)
	require.False(t, second.Success)
	require.Equal(t, "Your previous payment proof is still pending review", second.Message)

	var count int64
	require.NoError(t, svc.DB.Model(&paymentModels.PaymentProofSubmission{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSubmitAlreadyUnlockedIsRejected(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com", "USER")
	course := seedPaidCourse(t, svc.DB)

	courseID := course.ID
	_, err := svc.GrantEntitlement(user.ID, paymentModels.ProductTypeCourse, &courseID, nil, paymentModels.EntitlementManual, nil)
	require.NoError(t, err)

	result, err := svc.SubmitCoursePaymentProof(user, course, "", "https://pay.example.com/r/1", "")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, "This course is already unlocked for your account", result.Message)
}

func TestApproveGrantsEntitlementAndEnrolls(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com", "USER")
	admin := seedUser(t, svc.DB, "admin@example.com", "ADMIN")
	course := seedPaidCourse(t, svc.DB)

	result, err := svc.SubmitCoursePaymentProof(user, course, "", "https://pay.example.com/r/1", "")
	require.NoError(t, err)
	submission := result.Submission

	require.NoError(t, svc.ApproveCoursePaymentProof(submission, admin, "verified against bank statement"))

	require.Equal(t, paymentModels.ProofApproved, submission.Status)
	require.NotNil(t, submission.ReviewedBy)
	require.Equal(t, admin.ID, *submission.ReviewedBy)
	require.NotNil(t, submission.ReviewedAt)

	courseID := course.ID
	require.True(t, svc.HasEntitlement(user.ID, paymentModels.ProductTypeCourse, &courseID, nil))

	var enrollment learningModels.Enrollment
	require.NoError(t, svc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		First(&enrollment).Error)
	require.Equal(t, learningModels.EnrollmentActive, enrollment.Status)

	var progress learningModels.CourseProgress
	require.NoError(t, svc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		First(&progress).Error)
	require.Equal(t, 1, progress.TotalLessons)

	var logs []auditModels.AuditLog
	require.NoError(t, svc.DB.Where("action = ?", "payment_proof.approved").Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, "course", logs[0].SubjectType)
	require.NotNil(t, logs[0].ActorID)
	require.Equal(t, admin.ID, *logs[0].ActorID)
}

func TestApproveIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com", "USER")
	admin := seedUser(t, svc.DB, "admin@example.com", "ADMIN")
	course := seedPaidCourse(t, svc.DB)

	result, err := svc.SubmitCoursePaymentProof(user, course, "", "https://pay.example.com/r/1", "")
	require.NoError(t, err)
	submission := result.Submission

	require.NoError(t, svc.ApproveCoursePaymentProof(submission, admin, ""))
	firstReviewedAt := *submission.ReviewedAt

	require.NoError(t, svc.ApproveCoursePaymentProof(submission, admin, ""))
	require.True(t, firstReviewedAt.Equal(*submission.ReviewedAt))

	var entitlements int64
	require.NoError(t, svc.DB.Model(&paymentModels.Entitlement{}).
		Where("user_id = ?", user.ID).Count(&entitlements).Error)
	require.EqualValues(t, 1, entitlements)

	var logs int64
	require.NoError(t, svc.DB.Model(&auditModels.AuditLog{}).
		Where("action = ?", "payment_proof.approved").Count(&logs).Error)
	require.EqualValues(t, 1, logs)
}

func TestApproveNonCourseProofFails(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com", "USER")
	admin := seedUser(t, svc.DB, "admin@example.com", "ADMIN")

	projectID := uint(7)
	submission := paymentModels.PaymentProofSubmission{
		UserID:      user.ID,
		ProductType: paymentModels.ProductTypeProject,
		ProjectID:   &projectID,
		Status:      paymentModels.ProofPending,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, svc.DB.Create(&submission).Error)

	err := svc.ApproveCoursePaymentProof(&submission, admin, "")
	require.ErrorIs(t, err, ErrNotCourseProof)
	require.Equal(t, paymentModels.ProofPending, submission.Status)
}

func TestRejectRecordsAuditWithoutEntitlement(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com", "USER")
	admin := seedUser(t, svc.DB, "admin@example.com", "ADMIN")
	course := seedPaidCourse(t, svc.DB)

	result, err := svc.SubmitCoursePaymentProof(user, course, "", "https://pay.example.com/r/1", "")
	require.NoError(t, err)
	submission := result.Submission

	require.NoError(t, svc.RejectPaymentProof(submission, admin, "screenshot unreadable"))
	require.Equal(t, paymentModels.ProofRejected, submission.Status)
	require.Equal(t, "screenshot unreadable", submission.AdminNotes)

	courseID := course.ID
	require.False(t, svc.HasEntitlement(user.ID, paymentModels.ProductTypeCourse, &courseID, nil))

	var enrollments int64
	require.NoError(t, svc.DB.Model(&learningModels.Enrollment{}).
		Where("user_id = ?", user.ID).Count(&enrollments).Error)
	require.EqualValues(t, 0, enrollments)

	var logs []auditModels.AuditLog
	require.NoError(t, svc.DB.Where("action = ?", "payment_proof.rejected").Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, "course", logs[0].SubjectType)

	// Re-reject is a no-op and records nothing further.
	require.NoError(t, svc.RejectPaymentProof(submission, admin, ""))
	var count int64
	require.NoError(t, svc.DB.Model(&auditModels.AuditLog{}).
		Where("action = ?", "payment_proof.rejected").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAdminGrantIsIdempotentAndAudited(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com", "USER")
	admin := seedUser(t, svc.DB, "admin@example.com", "ADMIN")
	course := seedPaidCourse(t, svc.DB)

	first, err := svc.AdminGrantCourseEntitlement(user.ID, course.ID, admin, "comp access")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := svc.AdminGrantCourseEntitlement(user.ID, course.ID, admin, "")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var entitlements int64
	require.NoError(t, svc.DB.Model(&paymentModels.Entitlement{}).
		Where("user_id = ?", user.ID).Count(&entitlements).Error)
	require.EqualValues(t, 1, entitlements)

	require.True(t, svc.CanAccessCourse(user.ID, course))
}

func TestPaidCourseStaysLockedWithoutEntitlement(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com", "USER")
	course := seedPaidCourse(t, svc.DB)

	require.False(t, svc.CanAccessCourse(user.ID, course))

	courseID := course.ID
	require.False(t, svc.HasEntitlement(user.ID, paymentModels.ProductTypeCourse, &courseID, nil))

	// The refusal happens before the enrollment engine runs, so no
	// enrollment row may exist for the user.
	var enrollments int64
	require.NoError(t, svc.DB.Model(&learningModels.Enrollment{}).
		Where("user_id = ?", user.ID).Count(&enrollments).Error)
	require.EqualValues(t, 0, enrollments)

	free := courseModels.Course{Slug: "free-course", Title: "Free Course", Status: courseModels.StatusPublished}
	require.NoError(t, svc.DB.Create(&free).Error)
	require.True(t, svc.CanAccessCourse(user.ID, &free))
}

func TestApproveQueuesEnrollmentAndApprovalEmails(t *testing.T) {
	svc, queue := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com", "USER")
	admin := seedUser(t, svc.DB, "admin@example.com", "ADMIN")
	course := seedPaidCourse(t, svc.DB)

	result, err := svc.SubmitCoursePaymentProof(user, course, "", "https://pay.example.com/r/1", "")
	require.NoError(t, err)

	require.NoError(t, svc.ApproveCoursePaymentProof(result.Submission, admin, ""))

	// Approval enrolls the user, so both the enrollment confirmation and
	// the approval email go out.
	require.Contains(t, queue.names, tasks.TaskSendEnrollmentEmail)
	require.Contains(t, queue.names, tasks.TaskSendPaymentApprovalEmail)
	require.Len(t, queue.names, 2)

	// The idempotent re-approve queues nothing further.
	require.NoError(t, svc.ApproveCoursePaymentProof(result.Submission, admin, ""))
	require.Len(t, queue.names, 2)
}
