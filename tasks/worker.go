package tasks

import (
	"log"
	"time"

	"gorm.io/gorm"

	"academy/models"
	courseModels "academy/models/course"
	"academy/realtime"
	"academy/utils"
)

type job struct {
	Name string
	Args map[string]interface{}
}

// Worker drains the task queue on a single background goroutine. It is
// the in-process stand-in for an external broker: emails and follow-up
// notifications ride here so the transactional core never waits on them.
type Worker struct {
	db   *gorm.DB
	hub  *realtime.Hub
	jobs chan job
}

func NewWorker(db *gorm.DB, hub *realtime.Hub) *Worker {
	return &Worker{
		db:   db,
		hub:  hub,
		jobs: make(chan job, 256),
	}
}

// Start launches the worker loop.
func (w *Worker) Start() {
	go func() {
		log.Println("[TASKS] worker started")
		for j := range w.jobs {
			w.dispatch(j)
		}
	}()
}

// Enqueue hands a task to the worker without blocking. When the buffer
// is full the task is dropped and logged; callers are never failed.
func (w *Worker) Enqueue(name string, args map[string]interface{}) {
	select {
	case w.jobs <- job{Name: name, Args: args}:
	default:
		log.Printf("[TASKS] queue full, dropping task %s", name)
	}
}

func (w *Worker) dispatch(j job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[TASKS] task %s panicked: %v", j.Name, r)
		}
	}()

	switch j.Name {
	case TaskSendEnrollmentEmail:
		w.sendEnrollmentEmail(uintArg(j.Args, "user_id"), uintArg(j.Args, "course_id"))
	case TaskSendPaymentApprovalEmail:
		w.sendPaymentApprovalEmail(uintArg(j.Args, "user_id"), uintArg(j.Args, "course_id"))
	default:
		log.Printf("[TASKS] unknown task %s", j.Name)
	}
}

func (w *Worker) sendEnrollmentEmail(userID, courseID uint) {
	user, course, ok := w.loadUserAndCourse(userID, courseID)
	if !ok {
		return
	}

	if err := utils.SendEnrollmentEmail(user.Email, user.Name, course.Title, course.Slug); err != nil {
		log.Printf("[TASKS] enrollment email to %s failed: %v", user.Email, err)
	}

	w.hub.Emit(realtime.NotificationChannel(userID), map[string]interface{}{
		"type":      "enrollment_success",
		"message":   "Successfully enrolled in " + course.Title,
		"course_id": courseID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (w *Worker) sendPaymentApprovalEmail(userID, courseID uint) {
	user, course, ok := w.loadUserAndCourse(userID, courseID)
	if !ok {
		return
	}

	if err := utils.SendPaymentApprovalEmail(user.Email, user.Name, course.Title, course.Slug); err != nil {
		log.Printf("[TASKS] payment approval email to %s failed: %v", user.Email, err)
	}

	w.hub.Emit(realtime.NotificationChannel(userID), map[string]interface{}{
		"type":      "payment_approved",
		"message":   "Payment approved for " + course.Title,
		"course_id": courseID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (w *Worker) loadUserAndCourse(userID, courseID uint) (*models.User, *courseModels.Course, bool) {
	var user models.User
	if err := w.db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		log.Printf("[TASKS] user %d not found: %v", userID, err)
		return nil, nil, false
	}

	var course courseModels.Course
	if err := w.db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		log.Printf("[TASKS] course %d not found: %v", courseID, err)
		return nil, nil, false
	}

	return &user, &course, true
}

func uintArg(args map[string]interface{}, key string) uint {
	switch v := args[key].(type) {
	case uint:
		return v
	case int:
		return uint(v)
	case float64:
		return uint(v)
	default:
		return 0
	}
}
