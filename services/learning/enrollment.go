package learning

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"academy/cache"
	"academy/models"
	courseModels "academy/models/course"
	learningModels "academy/models/learning"
	"academy/realtime"
	"academy/tasks"
)

// Service is the enrollment and progress engine. All collaborators are
// injected; nothing here reaches for ambient globals so the engine can
// run against a test database.
type Service struct {
	DB       *gorm.DB
	Cache    cache.Store
	Hub      *realtime.Hub
	Tasks    tasks.Queue
	CacheTTL time.Duration
}

func NewService(db *gorm.DB, store cache.Store, hub *realtime.Hub, queue tasks.Queue, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{DB: db, Cache: store, Hub: hub, Tasks: queue, CacheTTL: cacheTTL}
}

// EnrollmentResult carries the outcome of an enroll call. Business
// outcomes (already enrolled, reactivated) are values, never errors.
type EnrollmentResult struct {
	Success    bool                       `json:"success"`
	Message    string                     `json:"message"`
	Enrollment *learningModels.Enrollment `json:"enrollment,omitempty"`
}

// EnrollUserInCourse enrolls a user in a course. The caller is expected
// to have checked publish status and, for paid courses, the entitlement
// gate. Duplicate calls are safe: the (user, course) unique index is the
// final guard, the get-or-create here is the optimization.
func (s *Service) EnrollUserInCourse(user *models.User, course *courseModels.Course) (EnrollmentResult, error) {
	var result EnrollmentResult
	var created, reactivated bool

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		result, created, reactivated, err = s.EnrollTx(tx, user, course)
		return err
	})
	if err != nil {
		return EnrollmentResult{}, err
	}

	// Cache invalidation and notifications happen only after commit.
	if created || reactivated {
		s.Cache.Delete(cache.UserEnrollmentsKey(user.ID))
		if created {
			s.Cache.Delete(cache.CourseEnrollmentsKey(course.ID))
		}
		s.Tasks.Enqueue(tasks.TaskSendEnrollmentEmail, map[string]interface{}{
			"user_id":   user.ID,
			"course_id": course.ID,
		})
	}

	return result, nil
}

// EnrollTx runs the enrollment state machine on an existing transaction.
// The payment approval flow reuses it so entitlement, enrollment and
// progress land in one atomic unit. Returns created/reactivated flags so
// the caller can run post-commit side effects.
func (s *Service) EnrollTx(tx *gorm.DB, user *models.User, course *courseModels.Course) (EnrollmentResult, bool, bool, error) {
	var existing learningModels.Enrollment
	err := tx.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return EnrollmentResult{}, false, false, err
	}

	if err == nil {
		// A soft-deleted row still owns the (user, course) slot under the
		// unique index. Enrolling again revives it as a fresh enrollment.
		if existing.IsDeleted {
			existing.IsDeleted = false
			existing.Status = learningModels.EnrollmentActive
			existing.StartedAt = time.Now()
			if err := tx.Save(&existing).Error; err != nil {
				return EnrollmentResult{}, false, false, err
			}
			if err := s.ensureCourseProgressTx(tx, user.ID, course.ID); err != nil {
				return EnrollmentResult{}, false, false, err
			}
			return EnrollmentResult{
				Success:    true,
				Message:    "Enrolled successfully",
				Enrollment: &existing,
			}, true, false, nil
		}

		switch existing.Status {
		case learningModels.EnrollmentActive:
			// Repair-on-read: an active enrollment must always have a
			// progress row.
			if err := s.ensureCourseProgressTx(tx, user.ID, course.ID); err != nil {
				return EnrollmentResult{}, false, false, err
			}
			return EnrollmentResult{
				Success:    false,
				Message:    "You are already enrolled in this course",
				Enrollment: &existing,
			}, false, false, nil

		case learningModels.EnrollmentCancelled:
			existing.Status = learningModels.EnrollmentActive
			existing.StartedAt = time.Now()
			if err := tx.Save(&existing).Error; err != nil {
				return EnrollmentResult{}, false, false, err
			}
			if err := s.ensureCourseProgressTx(tx, user.ID, course.ID); err != nil {
				return EnrollmentResult{}, false, false, err
			}
			return EnrollmentResult{
				Success:    true,
				Message:    "Enrollment reactivated successfully",
				Enrollment: &existing,
			}, false, true, nil

		default: // COMPLETED
			return EnrollmentResult{
				Success:    false,
				Message:    "You have already completed this course",
				Enrollment: &existing,
			}, false, false, nil
		}
	}

	// Fresh enrollment: create-if-absent so a concurrent duplicate call
	// cannot produce two active rows.
	enrollment := learningModels.Enrollment{
		UserID:    user.ID,
		CourseID:  course.ID,
		Status:    learningModels.EnrollmentActive,
		StartedAt: time.Now(),
	}
	if err := tx.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		FirstOrCreate(&enrollment).Error; err != nil {
		return EnrollmentResult{}, false, false, err
	}

	if err := s.ensureCourseProgressTx(tx, user.ID, course.ID); err != nil {
		return EnrollmentResult{}, false, false, err
	}

	return EnrollmentResult{
		Success:    true,
		Message:    "Enrolled successfully",
		Enrollment: &enrollment,
	}, true, false, nil
}

// ensureCourseProgressTx creates the CourseProgress row if it does not
// exist yet, seeded with the current published lesson total.
func (s *Service) ensureCourseProgressTx(tx *gorm.DB, userID, courseID uint) error {
	total, err := CountPublishedLessons(tx, courseID)
	if err != nil {
		return err
	}

	progress := learningModels.CourseProgress{
		UserID:       userID,
		CourseID:     courseID,
		TotalLessons: total,
	}
	return tx.Where("user_id = ? AND course_id = ?", userID, courseID).
		FirstOrCreate(&progress).Error
}

// CountPublishedLessons counts the lessons that contribute to progress.
// Only PUBLISHED lessons are progress-eligible; the same denominator is
// used at enrollment time and on every recompute.
func CountPublishedLessons(tx *gorm.DB, courseID uint) (int, error) {
	var total int64
	err := tx.Model(&courseModels.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ? AND modules.is_deleted = ?", courseID, false).
		Where("lessons.status = ? AND lessons.is_deleted = ?", courseModels.StatusPublished, false).
		Count(&total).Error
	return int(total), err
}
