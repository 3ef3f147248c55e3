package course

import (
	"time"

	"gorm.io/gorm"
)

// LessonProgress tracks one user's progress on one lesson. A row exists only
// after the first progress report; absence means zero progress.
type LessonProgress struct {
	gorm.Model
	UserID       uint `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_user_lesson"`
	LessonID     uint `json:"lesson_id" gorm:"not null;uniqueIndex:idx_progress_user_lesson"`
	CourseID     uint `json:"course_id" gorm:"index;not null"`
	EnrollmentID uint `json:"enrollment_id" gorm:"index;not null"`

	IsCompleted bool `json:"is_completed" gorm:"default:false"`
	// CompletedAt is set on first completion and never cleared afterwards,
	// even when the completion flag is toggled back off manually.
	CompletedAt    *time.Time `json:"completed_at"`
	WatchedSeconds int        `json:"watched_seconds" gorm:"default:0"`
}
