package learning

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	learningModels "academy/models/learning"
	"academy/realtime"
)

func TestCompleteLessonRecomputesProgress(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, lessons := seedCourse(t, svc.DB, 0, 2, 1)

	_, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)

	ok, err := svc.CompleteLesson(user.ID, &lessons[0])
	require.NoError(t, err)
	require.True(t, ok)

	var progress learningModels.CourseProgress
	require.NoError(t, svc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		First(&progress).Error)
	require.Equal(t, 1, progress.CompletedLessons)
	require.Equal(t, 2, progress.TotalLessons)
	require.InDelta(t, 50, progress.ProgressPercent, 0.01)
	require.NotNil(t, progress.LastViewedLesson)
	require.Equal(t, lessons[0].ID, *progress.LastViewedLesson)
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, lessons := seedCourse(t, svc.DB, 0, 2, 0)

	_, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)

	ok, err := svc.CompleteLesson(user.ID, &lessons[0])
	require.NoError(t, err)
	require.True(t, ok)

	var first learningModels.LessonProgress
	require.NoError(t, svc.DB.Where("user_id = ? AND lesson_id = ?", user.ID, lessons[0].ID).
		First(&first).Error)
	require.NotNil(t, first.CompletedAt)

	ok, err = svc.CompleteLesson(user.ID, &lessons[0])
	require.NoError(t, err)
	require.True(t, ok)

	var second learningModels.LessonProgress
	require.NoError(t, svc.DB.Where("user_id = ? AND lesson_id = ?", user.ID, lessons[0].ID).
		First(&second).Error)
	require.True(t, first.CompletedAt.Equal(*second.CompletedAt))

	var progress learningModels.CourseProgress
	require.NoError(t, svc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		First(&progress).Error)
	require.Equal(t, 1, progress.CompletedLessons)
}

func TestFullCompletionIssuesCertificateOnce(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, lessons := seedCourse(t, svc.DB, 0, 2, 0)

	_, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)

	for i := range lessons {
		_, err := svc.CompleteLesson(user.ID, &lessons[i])
		require.NoError(t, err)
	}

	var progress learningModels.CourseProgress
	require.NoError(t, svc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		First(&progress).Error)
	require.InDelta(t, 100, progress.ProgressPercent, 0.01)

	var certificates []learningModels.Certificate
	require.NoError(t, svc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Find(&certificates).Error)
	require.Len(t, certificates, 1)
	require.Regexp(t, `^VPA-[0-9A-F]{12}$`, certificates[0].CertificateNumber)

	// Re-completing the last lesson must not mint a second certificate.
	_, err = svc.CompleteLesson(user.ID, &lessons[1])
	require.NoError(t, err)
	require.NoError(t, svc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Find(&certificates).Error)
	require.Len(t, certificates, 1)
}

func TestCompleteLessonEmitsProgressEvent(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, lessons := seedCourse(t, svc.DB, 0, 2, 0)

	_, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)

	channel := realtime.ProgressChannel(user.ID, course.ID)
	sub := svc.Hub.Subscribe(channel)
	defer svc.Hub.Unsubscribe(channel, sub)

	_, err = svc.CompleteLesson(user.ID, &lessons[0])
	require.NoError(t, err)

	select {
	case raw := <-sub.Messages:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &event))
		require.Equal(t, "progress_update", event["type"])
		require.EqualValues(t, 1, event["completed_lessons"])
		require.EqualValues(t, 2, event["total_lessons"])
	default:
		t.Fatal("expected a progress event on the channel")
	}
}

func TestDraftOnlyCourseStaysAtZeroPercent(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, _ := seedCourse(t, svc.DB, 0, 0, 2)

	_, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)

	var progress learningModels.CourseProgress
	require.NoError(t, svc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		First(&progress).Error)
	require.Equal(t, 0, progress.TotalLessons)
	require.InDelta(t, 0, progress.ProgressPercent, 0.01)

	var certificates int64
	require.NoError(t, svc.DB.Model(&learningModels.Certificate{}).
		Where("user_id = ?", user.ID).Count(&certificates).Error)
	require.EqualValues(t, 0, certificates)
}

func TestGetCourseProgressReadsThroughCache(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, lessons := seedCourse(t, svc.DB, 0, 2, 0)

	_, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)

	first, err := svc.GetCourseProgress(user.ID, course.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, 0, first.CompletedLessons)

	// Completion invalidates the key, so the next read sees fresh counts.
	_, err = svc.CompleteLesson(user.ID, &lessons[0])
	require.NoError(t, err)

	second, err := svc.GetCourseProgress(user.ID, course.ID)
	require.NoError(t, err)
	require.NotNil(t, second)
	require.Equal(t, 1, second.CompletedLessons)
}

func TestGetUserCertificatesPreloadsCourse(t *testing.T) {
	svc, _ := newTestService(t)
	user := seedUser(t, svc.DB, "student@example.com")
	course, lessons := seedCourse(t, svc.DB, 0, 1, 0)

	_, err := svc.EnrollUserInCourse(user, course)
	require.NoError(t, err)
	_, err = svc.CompleteLesson(user.ID, &lessons[0])
	require.NoError(t, err)

	certificates, err := svc.GetUserCertificates(user.ID)
	require.NoError(t, err)
	require.Len(t, certificates, 1)
	require.Equal(t, course.ID, certificates[0].Course.ID)
	require.Equal(t, course.Title, certificates[0].Course.Title)
}
