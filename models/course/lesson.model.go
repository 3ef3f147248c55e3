package course

import "gorm.io/gorm"

// Lesson types
const (
	LessonTypeVideo = "VIDEO"
	LessonTypeText  = "TEXT"
	LessonTypeQuiz  = "QUIZ"
)

// Lesson represents one unit of content within a module
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	LessonType  string `json:"lesson_type" gorm:"default:'TEXT'"` // TEXT, VIDEO, QUIZ
	TextContent string `json:"text_content" gorm:"type:text"`     // For TEXT type
	VideoURL    string `json:"video_url"`                         // For VIDEO type
	// DurationSeconds bounds watched-time reports; 0 means unknown
	DurationSeconds int `json:"duration_seconds" gorm:"default:0"`
	// PassingScore applies to QUIZ lessons; nil falls back to the configured default
	PassingScore *int `json:"passing_score"`
	OrderIndex   int  `json:"order_index" gorm:"default:0"` // Order within module
	IsPublished  bool `json:"is_published" gorm:"default:false"`
	IsDeleted    bool `gorm:"default:false"`
}
