package payments

import (
	"time"

	"gorm.io/gorm"
)

const (
	ProductTypeCourse  = "COURSE"
	ProductTypeProject = "PROJECT"
)

const (
	ProofPending  = "PENDING"
	ProofApproved = "APPROVED"
	ProofRejected = "REJECTED"
)

// PaymentProofSubmission is user-supplied evidence of payment awaiting
// admin review. Amount is a snapshot of the product price at submission
// time; later price changes never alter historical rows.
type PaymentProofSubmission struct {
	gorm.Model
	UserID      uint    `json:"user_id" gorm:"index;not null"`
	ProductType string  `json:"product_type" gorm:"index"` // COURSE, PROJECT
	CourseID    *uint   `json:"course_id" gorm:"index"`
	ProjectID   *uint   `json:"project_id" gorm:"index"`
	Amount      float64 `json:"amount" gorm:"default:0"`
	ProofFile   string  `json:"proof_file"`
	ProofURL    string  `json:"proof_url"`
	Notes       string  `json:"notes" gorm:"type:text"`

	Status      string     `json:"status" gorm:"index;default:'PENDING'"` // PENDING, APPROVED, REJECTED
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedBy  *uint      `json:"reviewed_by"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	AdminNotes  string     `json:"admin_notes" gorm:"type:text"`
}
