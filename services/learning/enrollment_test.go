package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"academy/cache"
	"academy/database"
	"academy/models"
	courseModels "academy/models/course"
	learningModels "academy/models/learning"
	"academy/realtime"
	"academy/tasks"
)

type recordingQueue struct {
	names []string
}

func (q *recordingQueue) Enqueue(name string, args map[string]interface{}) {
	q.names = append(q.names, name)
}

func newTestService(t *testing.T) (*Service, *recordingQueue) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)

	queue := &recordingQueue{}
	svc := NewService(db, cache.NewMemoryStore(), realtime.NewHub(), queue, time.Minute)
	return svc, queue
}

func seedCourse(t *testing.T, db *gorm.DB, price float64, publishedLessons, draftLessons int) (*courseModels.Course, []courseModels.Lesson) {
	t.Helper()

	course := courseModels.Course{
		Slug:   "go-fundamentals",
		Title:  "Go Fundamentals",
		Price:  price,
		Status: courseModels.StatusPublished,
	}
	require.NoError(t, db.Create(&course).Error)

	module := courseModels.Module{CourseID: course.ID, Slug: "basics", Title: "Basics"}
	require.NoError(t, db.Create(&module).Error)

	var published []courseModels.Lesson
	for i := 0; i < publishedLessons; i++ {
		lesson := courseModels.Lesson{
			ModuleID: module.ID,
			Slug:     "lesson-" + string(rune('a'+i)),
			Title:    "Lesson",
			Status:   courseModels.StatusPublished,
		}
		require.NoError(t, db.Create(&lesson).Error)
		published = append(published, lesson)
	}
	for i := 0; i < draftLessons; i++ {
		lesson := courseModels.Lesson{
			ModuleID: module.ID,
			Slug:     "draft-" + string(rune('a'+i)),
			Title:    "Draft Lesson",
			Status:   courseModels.StatusDraft,
		}
		require.NoError(t, db.Create(&lesson).Error)
	}
	return &course, published
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Name: "Test User", Email: email, Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestEnrollCreatesEnrollmentAndProgress(t *testing.T) {
	svc, queue := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, _ := seedCourse(t, svc.DB, 0, 2, 1)

	result, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "Enrolled successfully", result.Message)
	require.NotNil(t, result.Enrollment)
	require.Equal(t, learningModels.EnrollmentActive, result.Enrollment.Status)

	var count int64
	require.NoError(t, svc.DB.Model(&learningModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Progress row is seeded with the published lesson total only.
	var progress learningModels.CourseProgress
	require.NoError(t, svc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		First(&progress).Error)
	require.Equal(t, 2, progress.TotalLessons)
	require.Equal(t, 0, progress.CompletedLessons)

	require.Contains(t, queue.names, tasks.TaskSendEnrollmentEmail)
}

func TestEnrollTwiceKeepsOneRow(t *testing.T) {
	svc, queue := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, _ := seedCourse(t, svc.DB, 0, 1, 0)

	first, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)
	require.False(t, second.Success)
	require.Equal(t, "You are already enrolled in this course", second.Message)

	var count int64
	require.NoError(t, svc.DB.Model(&learningModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	// The no-op path enqueues nothing.
	require.Len(t, queue.names, 1)
}

func TestEnrollReactivatesCancelledEnrollment(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, _ := seedCourse(t, svc.DB, 0, 1, 0)

	cancelled := learningModels.Enrollment{
		UserID:    user.ID,
		CourseID:  course.ID,
		Status:    learningModels.EnrollmentCancelled,
		StartedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, svc.DB.Create(&cancelled).Error)

	result, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "Enrollment reactivated successfully", result.Message)

	var reloaded learningModels.Enrollment
	require.NoError(t, svc.DB.First(&reloaded, cancelled.ID).Error)
	require.Equal(t, learningModels.EnrollmentActive, reloaded.Status)
}

func TestEnrollCompletedCourseIsRejected(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, _ := seedCourse(t, svc.DB, 0, 1, 0)

	done := learningModels.Enrollment{
		UserID:    user.ID,
		CourseID:  course.ID,
		Status:    learningModels.EnrollmentCompleted,
		StartedAt: time.Now().Add(-72 * time.Hour),
	}
	require.NoError(t, svc.DB.Create(&done).Error)

	result, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, "You have already completed this course", result.Message)

	var count int64
	require.NoError(t, svc.DB.Model(&learningModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEnrollRevivesSoftDeletedRow(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, _ := seedCourse(t, svc.DB, 0, 1, 0)

	stale := learningModels.Enrollment{
		UserID:    user.ID,
		CourseID:  course.ID,
		Status:    learningModels.EnrollmentCancelled,
		StartedAt: time.Now().Add(-96 * time.Hour),
		IsDeleted: true,
	}
	require.NoError(t, svc.DB.Create(&stale).Error)

	result, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "Enrolled successfully", result.Message)

	// The soft-deleted row owns the unique (user, course) slot, so it is
	// revived in place rather than duplicated.
	var rows []learningModels.Enrollment
	require.NoError(t, svc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, stale.ID, rows[0].ID)
	require.False(t, rows[0].IsDeleted)
	require.Equal(t, learningModels.EnrollmentActive, rows[0].Status)
}
