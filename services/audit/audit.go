package audit

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditModels "academy/models/audit"
)

// Record appends an audit row on the given transaction handle. Audit
// writes that belong to an admin action run on that action's transaction
// so the row and the action commit or roll back together.
func Record(tx *gorm.DB, actorID *uint, action, subjectType, subjectID, message string, metadata map[string]interface{}) error {
	entry := auditModels.AuditLog{
		ActorID:     actorID,
		Action:      action,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Message:     message,
	}

	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		entry.Metadata = datatypes.JSON(raw)
	}

	return tx.Create(&entry).Error
}
