package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Content publish lifecycle shared by courses and lessons
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
	StatusArchived  = "ARCHIVED"
)

// CourseCategory groups courses on the catalog page
type CourseCategory struct {
	gorm.Model
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsDeleted   bool   `gorm:"default:false"`
}

// Course represents a learning course
type Course struct {
	gorm.Model
	Slug         string         `json:"slug" gorm:"uniqueIndex;not null"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	ThumbnailURL string         `json:"thumbnail_url"`
	Level        string         `json:"level"`
	Duration     string         `json:"duration"`
	Price        float64        `json:"price" gorm:"default:0"`              // 0 means free
	Status       string         `json:"status" gorm:"index;default:'DRAFT'"` // DRAFT, PUBLISHED, ARCHIVED
	PublishedAt  *time.Time     `json:"published_at"`
	ScheduledAt  *time.Time     `json:"scheduled_at"`
	OrderIndex   int            `json:"order_index" gorm:"index;default:0"`
	CategoryID   *uint          `json:"category_id" gorm:"index"`
	InstructorID *uint          `json:"instructor_id" gorm:"index"`
	Metadata     datatypes.JSON `json:"metadata"`
	IsDeleted    bool           `gorm:"default:false"`

	Category *CourseCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// IsFree reports whether the course can be enrolled without an entitlement
func (c *Course) IsFree() bool {
	return c.Price <= 0
}
