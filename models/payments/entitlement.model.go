package payments

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EntitlementManual = "MANUAL"
	EntitlementFree   = "FREE"
)

// Entitlement is a standing grant allowing a user to access a paid
// product, independent of enrollment state. Its existence is the sole
// gate for paid-course enrollment.
type Entitlement struct {
	gorm.Model
	UserID      uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_entitlement_tuple"`
	ProductType string         `json:"product_type" gorm:"uniqueIndex:idx_entitlement_tuple"` // COURSE, PROJECT
	CourseID    *uint          `json:"course_id" gorm:"uniqueIndex:idx_entitlement_tuple"`
	ProjectID   *uint          `json:"project_id" gorm:"uniqueIndex:idx_entitlement_tuple"`
	Source      string         `json:"source" gorm:"default:'MANUAL'"` // MANUAL, FREE
	GrantedBy   *uint          `json:"granted_by"`
	GrantedAt   time.Time      `json:"granted_at"`
	Metadata    datatypes.JSON `json:"metadata"`
}
