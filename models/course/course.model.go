package course

import "gorm.io/gorm"

// Course represents a learning course
type Course struct {
	gorm.Model
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Status      string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	// TotalLessons counts published lessons; EnrolledStudents mirrors the
	// active-enrollment count. Both are re-derived inside ledger transactions
	// and by the nightly reconciler, never mutated anywhere else.
	TotalLessons     int  `json:"total_lessons" gorm:"default:0"`
	EnrolledStudents int  `json:"enrolled_students" gorm:"default:0"`
	IsDeleted        bool `gorm:"default:false"`
}
