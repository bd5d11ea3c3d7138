package tasks

import "log"

// Task names understood by the worker.
const (
	TaskSendEnrollmentEmail      = "send_enrollment_email"
	TaskSendPaymentApprovalEmail = "send_payment_approval_email"
)

// Queue is the message-passing boundary for background work. Enqueue
// must never block and never fail the caller: a full queue or missing
// broker downgrades to a log line.
type Queue interface {
	Enqueue(name string, args map[string]interface{})
}

// NopQueue discards everything. Valid when no delivery backend is wired.
type NopQueue struct{}

func (NopQueue) Enqueue(name string, args map[string]interface{}) {
	log.Printf("[TASKS] no worker configured, dropping task %s", name)
}
