package learning

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	courseModels "academy/models/course"
)

const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentCancelled = "CANCELLED"
)

// Enrollment tracks a user's registration in a course.
// The (user, course) unique index is the final guard against
// duplicate rows under concurrent enrolls.
type Enrollment struct {
	gorm.Model
	UserID      uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID    uint           `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	Status      string         `json:"status" gorm:"default:'ACTIVE'"` // ACTIVE, COMPLETED, CANCELLED
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	ExpiresAt   *time.Time     `json:"expires_at"`
	Metadata    datatypes.JSON `json:"metadata"`
	IsDeleted   bool           `gorm:"default:false"`

	Course courseModels.Course `json:"course" gorm:"foreignKey:CourseID"`
}
