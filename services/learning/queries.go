package learning

import (
	"encoding/json"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"academy/cache"
	learningModels "academy/models/learning"
)

// GetUserEnrollments lists a user's enrollments newest-first, through
// the short-TTL cache. A cold miss recomputes from the store of record.
func (s *Service) GetUserEnrollments(userID uint) ([]learningModels.Enrollment, error) {
	key := cache.UserEnrollmentsKey(userID)
	if raw, ok := s.Cache.Get(key); ok {
		var enrollments []learningModels.Enrollment
		if err := json.Unmarshal([]byte(raw), &enrollments); err == nil {
			return enrollments, nil
		}
	}

	var enrollments []learningModels.Enrollment
	if err := s.DB.Where("user_id = ? AND is_deleted = ?", userID, false).
		Preload("Course").
		Order("started_at desc").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(enrollments); err == nil {
		s.Cache.Set(key, string(raw), s.CacheTTL)
	}
	return enrollments, nil
}

// GetCourseProgress returns the user's progress row for the course, or
// nil when none exists yet. Read-through cached.
func (s *Service) GetCourseProgress(userID, courseID uint) (*learningModels.CourseProgress, error) {
	key := cache.CourseProgressKey(userID, courseID)
	if raw, ok := s.Cache.Get(key); ok {
		var progress learningModels.CourseProgress
		if err := json.Unmarshal([]byte(raw), &progress); err == nil {
			return &progress, nil
		}
	}

	var progress learningModels.CourseProgress
	err := s.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if raw, err := json.Marshal(progress); err == nil {
		s.Cache.Set(key, string(raw), s.CacheTTL)
	}
	return &progress, nil
}

// CountCourseEnrollments returns the number of non-deleted enrollments
// for a course, cached under the course_enrollments key.
func (s *Service) CountCourseEnrollments(courseID uint) (int64, error) {
	key := cache.CourseEnrollmentsKey(courseID)
	if raw, ok := s.Cache.Get(key); ok {
		if count, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return count, nil
		}
	}

	var count int64
	if err := s.DB.Model(&learningModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}

	s.Cache.Set(key, strconv.FormatInt(count, 10), s.CacheTTL)
	return count, nil
}

// GetUserCertificates lists the user's issued certificates newest-first,
// with their courses preloaded.
func (s *Service) GetUserCertificates(userID uint) ([]learningModels.Certificate, error) {
	var certificates []learningModels.Certificate
	err := s.DB.Where("user_id = ?", userID).
		Preload("Course").
		Order("issued_at desc").
		Find(&certificates).Error
	return certificates, err
}
