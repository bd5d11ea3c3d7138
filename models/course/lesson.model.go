package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson is a single unit of content inside a module
type Lesson struct {
	gorm.Model
	ModuleID         uint           `json:"module_id" gorm:"index;not null;uniqueIndex:idx_lesson_module_slug"`
	Slug             string         `json:"slug" gorm:"uniqueIndex:idx_lesson_module_slug"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Body             string         `json:"body" gorm:"type:text"`
	YoutubeURL       string         `json:"youtube_url"`
	EstimatedMinutes int            `json:"estimated_minutes" gorm:"default:0"`
	Difficulty       string         `json:"difficulty"`
	OrderIndex       int            `json:"order_index" gorm:"default:0"`
	Status           string         `json:"status" gorm:"index;default:'DRAFT'"` // DRAFT, PUBLISHED, ARCHIVED
	PublishedAt      *time.Time     `json:"published_at"`
	ScheduledAt      *time.Time     `json:"scheduled_at"`
	Metadata         datatypes.JSON `json:"metadata"`
	IsDeleted        bool           `gorm:"default:false"`
}
