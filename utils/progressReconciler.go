package utils

import (
	"log"

	"lms/database"
	courseModels "lms/models/course"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeProgressReconciler schedules the nightly job that re-derives every
// cached aggregate (course enrolled-student counters, enrollment progress
// mirrors) from the source-of-truth enrollment and lesson-progress rows.
func InitializeProgressReconciler() {
	log.Println("[RECONCILER] Initializing progress reconciler...")

	c := cron.New()

	// Run daily at 3 AM
	c.AddFunc("0 3 * * *", func() {
		log.Println("[RECONCILER] Running nightly progress reconciliation...")
		ReconcileProgressCaches(database.Database.Db)
	})

	c.Start()
	log.Println("[RECONCILER] Progress reconciler started - runs daily at 3 AM")
}

// ReconcileProgressCaches recomputes all cached counters from scratch. Safe to
// run at any time; it only ever converges the mirrors toward the truth.
func ReconcileProgressCaches(db *gorm.DB) {
	var courses []courseModels.Course
	if err := db.Where("is_deleted = ?", false).Find(&courses).Error; err != nil {
		log.Printf("[RECONCILER] Failed to list courses: %v", err)
		return
	}

	for _, course := range courses {
		if err := reconcileCourse(db, course.ID); err != nil {
			log.Printf("[RECONCILER] Course %d reconciliation failed: %v", course.ID, err)
		}
	}

	log.Printf("[RECONCILER] Reconciled %d courses", len(courses))
}

func reconcileCourse(db *gorm.DB, courseID uint) error {
	// Enrolled-student counter from the active-enrollment count
	var active int64
	if err := db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, courseModels.EnrollmentActive).
		Count(&active).Error; err != nil {
		return err
	}

	// Published-lesson counter
	var totalLessons int64
	if err := db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Count(&totalLessons).Error; err != nil {
		return err
	}

	if err := db.Model(&courseModels.Course{}).Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"enrolled_students": active,
			"total_lessons":     totalLessons,
		}).Error; err != nil {
		return err
	}

	// Enrollment progress mirrors, re-derived from the LessonProgress set
	var enrollments []courseModels.Enrollment
	if err := db.Where("course_id = ? AND status = ?", courseID, courseModels.EnrollmentActive).
		Find(&enrollments).Error; err != nil {
		return err
	}

	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Find(&modules).Error; err != nil {
		return err
	}

	for _, enrollment := range enrollments {
		completedTotal := 0
		modulePcts := make([]int, len(modules))

		for i, mod := range modules {
			var lessonCount int64
			if err := db.Model(&courseModels.Lesson{}).
				Where("module_id = ? AND is_deleted = ? AND is_published = ?", mod.ID, false, true).
				Count(&lessonCount).Error; err != nil {
				return err
			}

			var completed int64
			if err := db.Model(&courseModels.LessonProgress{}).
				Joins("JOIN lessons ON lesson_progresses.lesson_id = lessons.id").
				Where("lesson_progresses.user_id = ? AND lessons.module_id = ? AND lesson_progresses.is_completed = ?",
					enrollment.UserID, mod.ID, true).
				Where("lessons.is_deleted = ? AND lessons.is_published = ?", false, true).
				Count(&completed).Error; err != nil {
				return err
			}

			modulePcts[i] = courseModels.ModuleProgressPct(int(completed), int(lessonCount))
			completedTotal += int(completed)
		}

		if err := db.Model(&enrollment).Updates(map[string]interface{}{
			"total_lessons":     totalLessons,
			"completed_lessons": completedTotal,
			"progress":          courseModels.CourseProgressPct(modulePcts),
		}).Error; err != nil {
			return err
		}
	}

	return nil
}
