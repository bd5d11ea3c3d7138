package utils

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"academy/database"
	courseModels "academy/models/course"
)

// InitializeContentScheduler publishes scheduled draft content. Admins
// set scheduled_at on courses and lessons; this job flips them to
// PUBLISHED once the time passes.
func InitializeContentScheduler() {
	log.Println("[SCHEDULER] Initializing content publish scheduler...")

	c := cron.New()

	// Check for due content every 5 minutes
	c.AddFunc("*/5 * * * *", func() {
		PublishScheduledContent()
	})

	c.Start()
	log.Println("[SCHEDULER] Content scheduler started - runs every 5 minutes")
}

// PublishScheduledContent flips due DRAFT courses and lessons to PUBLISHED.
func PublishScheduledContent() {
	db := database.Database.Db
	now := time.Now()

	result := db.Model(&courseModels.Course{}).
		Where("status = ? AND is_deleted = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", courseModels.StatusDraft, false, now).
		Updates(map[string]interface{}{"status": courseModels.StatusPublished, "published_at": now})
	if result.Error != nil {
		log.Printf("[SCHEDULER] Error publishing scheduled courses: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("[SCHEDULER] Published %d scheduled course(s)", result.RowsAffected)
	}

	result = db.Model(&courseModels.Lesson{}).
		Where("status = ? AND is_deleted = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", courseModels.StatusDraft, false, now).
		Updates(map[string]interface{}{"status": courseModels.StatusPublished, "published_at": now})
	if result.Error != nil {
		log.Printf("[SCHEDULER] Error publishing scheduled lessons: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("[SCHEDULER] Published %d scheduled lesson(s)", result.RowsAffected)
	}
}
