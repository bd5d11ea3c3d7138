package learning

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseProgress is the derived aggregate of a user's lesson completions
// within one course. It is always recomputed from LessonProgress counts,
// never incremented in place.
type CourseProgress struct {
	gorm.Model
	UserID           uint    `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_user_course"`
	CourseID         uint    `json:"course_id" gorm:"not null;uniqueIndex:idx_progress_user_course"`
	CompletedLessons int     `json:"completed_lessons" gorm:"default:0"`
	TotalLessons     int     `json:"total_lessons" gorm:"default:0"`
	ProgressPercent  float64 `json:"progress_percent" gorm:"default:0"` // 0-100
	LastViewedLesson *uint   `json:"last_viewed_lesson"`
}

// LessonProgress tracks a user's state on a single lesson. Created lazily
// on first view or completion.
type LessonProgress struct {
	gorm.Model
	UserID      uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson"`
	LessonID    uint           `json:"lesson_id" gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson"`
	Completed   bool           `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time     `json:"completed_at"`
	NotesCount  int            `json:"notes_count" gorm:"default:0"`
	Checkpoints datatypes.JSON `json:"checkpoints"`
}
