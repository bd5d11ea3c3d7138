package learning

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"academy/cache"
	courseModels "academy/models/course"
	learningModels "academy/models/learning"
	"academy/realtime"
)

type progressSnapshot struct {
	Completed int
	Total     int
	Percent   float64
}

// CompleteLesson marks a lesson complete for the user and recomputes the
// parent course progress from live counts. Idempotent: completing an
// already-complete lesson is a no-op that leaves completed_at untouched.
// Reaching 100% issues the certificate exactly once.
func (s *Service) CompleteLesson(userID uint, lesson *courseModels.Lesson) (bool, error) {
	var module courseModels.Module
	if err := s.DB.Where("id = ? AND is_deleted = ?", lesson.ModuleID, false).First(&module).Error; err != nil {
		return false, err
	}
	courseID := module.CourseID

	var (
		alreadyDone bool
		snapshot    progressSnapshot
		certificate *learningModels.Certificate
	)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var lp learningModels.LessonProgress
		err := tx.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&lp).Error
		if err == nil && lp.Completed {
			alreadyDone = true
			return nil
		}
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			lp = learningModels.LessonProgress{UserID: userID, LessonID: lesson.ID}
		}

		now := time.Now()
		lp.Completed = true
		lp.CompletedAt = &now
		if err := tx.Save(&lp).Error; err != nil {
			return err
		}

		snapshot, err = recomputeCourseProgressTx(tx, userID, courseID, lesson.ID)
		if err != nil {
			return err
		}

		if snapshot.Percent >= 100 {
			certificate, err = issueCertificateTx(tx, userID, courseID, snapshot.Percent)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if alreadyDone {
		return true, nil
	}

	// Post-commit: invalidate exactly the keys this mutation touched,
	// then push the progress event.
	s.Cache.Delete(
		cache.CourseProgressKey(userID, courseID),
		cache.UserEnrollmentsKey(userID),
	)

	s.Hub.Emit(realtime.ProgressChannel(userID, courseID), map[string]interface{}{
		"type":              "progress_update",
		"completed_lessons": snapshot.Completed,
		"total_lessons":     snapshot.Total,
		"progress_percent":  snapshot.Percent,
	})

	if certificate != nil {
		s.Hub.Emit(realtime.NotificationChannel(userID), map[string]interface{}{
			"type":               "certificate_issued",
			"message":            "Certificate issued for course completion",
			"certificate_number": certificate.CertificateNumber,
			"course_id":          courseID,
			"timestamp":          time.Now().UTC().Format(time.RFC3339),
		})
	}

	return true, nil
}

// recomputeCourseProgressTx derives the aggregate fully from source
// counts instead of incrementing deltas, so it self-heals from drift
// (lessons unpublished after completion, repeated signals, etc.).
func recomputeCourseProgressTx(tx *gorm.DB, userID, courseID, lastLessonID uint) (progressSnapshot, error) {
	var completed int64
	err := tx.Model(&learningModels.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("lesson_progresses.user_id = ? AND lesson_progresses.completed = ?", userID, true).
		Where("modules.course_id = ? AND modules.is_deleted = ?", courseID, false).
		Where("lessons.status = ? AND lessons.is_deleted = ?", courseModels.StatusPublished, false).
		Count(&completed).Error
	if err != nil {
		return progressSnapshot{}, err
	}

	total, err := CountPublishedLessons(tx, courseID)
	if err != nil {
		return progressSnapshot{}, err
	}

	percent := float64(0)
	if total > 0 {
		percent = float64(completed) / float64(total) * 100
	}

	var progress learningModels.CourseProgress
	err = tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return progressSnapshot{}, err
		}
		progress = learningModels.CourseProgress{UserID: userID, CourseID: courseID}
	}

	progress.CompletedLessons = int(completed)
	progress.TotalLessons = total
	progress.ProgressPercent = percent
	progress.LastViewedLesson = &lastLessonID
	if err := tx.Save(&progress).Error; err != nil {
		return progressSnapshot{}, err
	}

	return progressSnapshot{Completed: int(completed), Total: total, Percent: percent}, nil
}

// issueCertificateTx creates the certificate if it does not exist yet.
// Returns nil when one was already issued.
func issueCertificateTx(tx *gorm.DB, userID, courseID uint, percent float64) (*learningModels.Certificate, error) {
	var existing learningModels.Certificate
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"completion_date":  time.Now().UTC().Format(time.RFC3339),
		"progress_percent": percent,
	})

	certificate := learningModels.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		CertificateNumber: newCertificateNumber(),
		IssuedAt:          time.Now(),
		Metadata:          datatypes.JSON(metadata),
	}
	if err := tx.Create(&certificate).Error; err != nil {
		return nil, err
	}
	return &certificate, nil
}

func newCertificateNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "VPA-" + strings.ToUpper(hex[:12])
}
