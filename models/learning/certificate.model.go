package learning

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	courseModels "academy/models/course"
)

// Certificate is issued at most once per (user, course), when course
// progress reaches 100%.
type Certificate struct {
	gorm.Model
	UserID            uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_certificate_user_course"`
	CourseID          uint           `json:"course_id" gorm:"not null;uniqueIndex:idx_certificate_user_course"`
	CertificateNumber string         `json:"certificate_number" gorm:"unique;not null"`
	IssuedAt          time.Time      `json:"issued_at"`
	ExpiresAt         *time.Time     `json:"expires_at"`
	Metadata          datatypes.JSON `json:"metadata"`

	Course courseModels.Course `json:"course" gorm:"foreignKey:CourseID"`
}
