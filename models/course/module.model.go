package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Module represents a section/module within a course
type Module struct {
	gorm.Model
	CourseID    uint           `json:"course_id" gorm:"index;not null;uniqueIndex:idx_module_course_slug"`
	Slug        string         `json:"slug" gorm:"uniqueIndex:idx_module_course_slug"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	OrderIndex  int            `json:"order_index" gorm:"default:0"` // Module order in course
	Metadata    datatypes.JSON `json:"metadata"`
	IsDeleted   bool           `gorm:"default:false"`
}
