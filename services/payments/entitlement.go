package payments

import (
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"academy/cache"
	"academy/models"
	courseModels "academy/models/course"
	paymentModels "academy/models/payments"
	"academy/realtime"
	"academy/services/audit"
	"academy/services/learning"
	"academy/tasks"
)

// Service is the entitlement ledger and payment-proof workflow. It
// depends downward on the learning engine; the learning engine never
// imports this package.
type Service struct {
	DB       *gorm.DB
	Cache    cache.Store
	Hub      *realtime.Hub
	Tasks    tasks.Queue
	Learning *learning.Service
}

func NewService(db *gorm.DB, store cache.Store, hub *realtime.Hub, queue tasks.Queue, learningSvc *learning.Service) *Service {
	return &Service{DB: db, Cache: store, Hub: hub, Tasks: queue, Learning: learningSvc}
}

// HasEntitlement is a pure existence check on the ledger.
func (s *Service) HasEntitlement(userID uint, productType string, courseID, projectID *uint) bool {
	query := s.DB.Model(&paymentModels.Entitlement{}).
		Where("user_id = ? AND product_type = ?", userID, productType)
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// CanAccessCourse reports whether the user may enroll: free courses are
// always open, paid ones require a course entitlement.
func (s *Service) CanAccessCourse(userID uint, course *courseModels.Course) bool {
	if course.IsFree() {
		return true
	}
	courseID := course.ID
	return s.HasEntitlement(userID, paymentModels.ProductTypeCourse, &courseID, nil)
}

// GrantEntitlement is an idempotent get-or-create on the unique
// (user, product_type, course, project) tuple. Re-granting returns the
// existing row untouched.
func (s *Service) GrantEntitlement(userID uint, productType string, courseID, projectID *uint, source string, grantedBy *uint) (*paymentModels.Entitlement, error) {
	return grantEntitlementTx(s.DB, userID, productType, courseID, projectID, source, grantedBy)
}

func grantEntitlementTx(tx *gorm.DB, userID uint, productType string, courseID, projectID *uint, source string, grantedBy *uint) (*paymentModels.Entitlement, error) {
	entitlement := paymentModels.Entitlement{
		UserID:      userID,
		ProductType: productType,
		CourseID:    courseID,
		ProjectID:   projectID,
		Source:      source,
		GrantedBy:   grantedBy,
		GrantedAt:   time.Now(),
	}

	query := tx.Where("user_id = ? AND product_type = ?", userID, productType)
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	} else {
		query = query.Where("course_id IS NULL")
	}
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	} else {
		query = query.Where("project_id IS NULL")
	}

	if err := query.FirstOrCreate(&entitlement).Error; err != nil {
		return nil, err
	}
	return &entitlement, nil
}

// AdminGrantCourseEntitlement is the manual unlock path. The grant and
// its audit row share one transaction.
func (s *Service) AdminGrantCourseEntitlement(userID, courseID uint, admin *models.User, message string) (*paymentModels.Entitlement, error) {
	adminID := admin.ID
	var entitlement *paymentModels.Entitlement

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entitlement, err = grantEntitlementTx(tx, userID, paymentModels.ProductTypeCourse, &courseID, nil, paymentModels.EntitlementManual, &adminID)
		if err != nil {
			return err
		}
		if message == "" {
			message = fmt.Sprintf("Manually granted course entitlement to user %d", userID)
		}
		return audit.Record(tx, &adminID,
			"entitlement.granted",
			"course",
			strconv.FormatUint(uint64(courseID), 10),
			message,
			map[string]interface{}{
				"entitlement_id": entitlement.ID,
				"user_id":        userID,
				"course_id":      courseID,
			},
		)
	})
	if err != nil {
		return nil, err
	}
	return entitlement, nil
}
