package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question types
const (
	QuestionMultipleChoice = "MULTIPLE_CHOICE"
	QuestionTrueFalse      = "TRUE_FALSE"
	QuestionShortAnswer    = "SHORT_ANSWER"
	QuestionEssay          = "ESSAY"
	QuestionCode           = "CODE"
)

// QuizQuestion represents one question inside a QUIZ lesson
type QuizQuestion struct {
	gorm.Model
	LessonID     uint           `json:"lesson_id" gorm:"index;not null"`
	QuestionType string         `json:"question_type" gorm:"default:'MULTIPLE_CHOICE'"`
	QuestionText string         `json:"question_text" gorm:"type:text"`
	Options      datatypes.JSON `json:"options"` // JSON array of option strings
	// CorrectAnswer holds an option index for MULTIPLE_CHOICE/TRUE_FALSE and
	// the expected text for SHORT_ANSWER; unused for ESSAY/CODE
	CorrectAnswer string `json:"correct_answer"`
	Points        int    `json:"points" gorm:"default:1"`
	OrderIndex    int    `json:"order_index" gorm:"default:0"`
	IsDeleted     bool   `gorm:"default:false"`
}

// QuizAttempt is an immutable record of one quiz submission. Rows are only
// ever inserted; attempt history is never mutated retroactively.
type QuizAttempt struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index;not null"`
	LessonID uint `json:"lesson_id" gorm:"index;not null"`
	// Answers stores the submitted (question_id, answer) pairs in order
	Answers       datatypes.JSON `json:"answers"`
	Score         float64        `json:"score"`        // raw points, exact
	TotalPoints   int            `json:"total_points"` // maximum possible
	Percentage    int            `json:"percentage"`   // rounded half-up
	Passed        bool           `json:"passed" gorm:"default:false"`
	TimeTakenSec  int            `json:"time_taken_seconds" gorm:"default:0"`
	SubmittedAt   time.Time      `json:"submitted_at"`
	AttemptNumber int            `json:"attempt_number" gorm:"default:1"`
}
