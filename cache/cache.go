package cache

import (
	"fmt"
	"time"
)

// Store is the cache port used by the services. Implementations must
// tolerate cold misses; callers always recompute from the database when
// a key is absent.
type Store interface {
	Get(key string) (string, bool)
	Set(key string, value string, ttl time.Duration)
	Delete(keys ...string)
}

// Cache key conventions shared by the learning and payment services.

func UserEnrollmentsKey(userID uint) string {
	return fmt.Sprintf("user_enrollments:%d", userID)
}

func CourseProgressKey(userID, courseID uint) string {
	return fmt.Sprintf("course_progress:%d:%d", userID, courseID)
}

func CourseEnrollmentsKey(courseID uint) string {
	return fmt.Sprintf("course_enrollments:%d", courseID)
}
