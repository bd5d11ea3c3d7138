package audit

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of entitlement-affecting admin
// actions. Rows are never updated; deletion is a superuser escape hatch
// outside normal flows.
type AuditLog struct {
	gorm.Model
	ActorID     *uint          `json:"actor_id" gorm:"index"`
	Action      string         `json:"action" gorm:"index;not null"`
	SubjectType string         `json:"subject_type" gorm:"index"`
	SubjectID   string         `json:"subject_id"`
	Message     string         `json:"message" gorm:"type:text"`
	Metadata    datatypes.JSON `json:"metadata"`
}
