package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCancelled = "CANCELLED"
)

// Enrollment tracks a user's standing relationship to a course.
//
// There is at most one row per (user, course): cancelling flips the status and
// re-enrolling reactivates the same row, so the enrollment ID stays stable
// across cancel/re-enroll cycles and progress rows keep a valid back-reference.
// The unique index doubles as the guard against concurrent double-enrollment.
type Enrollment struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID   uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	Status     string `json:"status" gorm:"default:'ACTIVE'"` // ACTIVE, CANCELLED
	PriceCents int    `json:"price_cents" gorm:"default:0"`
	AccessType string `json:"access_type" gorm:"default:'open'"`

	EnrolledAt     time.Time `json:"enrolled_at"`
	LastActivityAt time.Time `json:"last_activity_at"`

	// Cached mirrors of the LessonProgress set; re-derivable at any time
	TotalLessons     int `json:"total_lessons" gorm:"default:0"`
	CompletedLessons int `json:"completed_lessons" gorm:"default:0"`
	Progress         int `json:"progress" gorm:"default:0"` // percentage 0-100
}
