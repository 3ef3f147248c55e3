package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type moduleProgressView struct {
	ModuleID         uint   `json:"module_id"`
	ModuleTitle      string `json:"module_title"`
	TotalLessons     int    `json:"total_lessons"`
	CompletedLessons int    `json:"completed_lessons"`
	Progress         int    `json:"progress"`
}

type progressSnapshot struct {
	Modules          []moduleProgressView `json:"modules"`
	Overall          int                  `json:"overall_progress"`
	TotalLessons     int                  `json:"total_lessons"`
	CompletedLessons int                  `json:"completed_lessons"`
}

// courseProgressSnapshot folds the user's LessonProgress rows into module and
// course percentages. The LessonProgress set is the source of truth; cached
// copies on the enrollment are refreshed from this, never the other way round.
func courseProgressSnapshot(db *gorm.DB, userID uint, courseID uint) (*progressSnapshot, error) {
	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&modules).Error; err != nil {
		return nil, err
	}

	snapshot := &progressSnapshot{Modules: make([]moduleProgressView, len(modules))}
	modulePcts := make([]int, len(modules))

	for i, mod := range modules {
		var total int64
		if err := db.Model(&courseModels.Lesson{}).
			Where("module_id = ? AND is_deleted = ? AND is_published = ?", mod.ID, false, true).
			Count(&total).Error; err != nil {
			return nil, err
		}

		var completed int64
		if err := db.Model(&courseModels.LessonProgress{}).
			Joins("JOIN lessons ON lesson_progresses.lesson_id = lessons.id").
			Where("lesson_progresses.user_id = ? AND lessons.module_id = ? AND lesson_progresses.is_completed = ?",
				userID, mod.ID, true).
			Where("lessons.is_deleted = ? AND lessons.is_published = ?", false, true).
			Count(&completed).Error; err != nil {
			return nil, err
		}

		pct := courseModels.ModuleProgressPct(int(completed), int(total))
		modulePcts[i] = pct
		snapshot.Modules[i] = moduleProgressView{
			ModuleID:         mod.ID,
			ModuleTitle:      mod.Title,
			TotalLessons:     int(total),
			CompletedLessons: int(completed),
			Progress:         pct,
		}
		snapshot.TotalLessons += int(total)
		snapshot.CompletedLessons += int(completed)
	}

	snapshot.Overall = courseModels.CourseProgressPct(modulePcts)
	return snapshot, nil
}

// refreshEnrollmentProgress re-derives the enrollment's cached counters from
// the LessonProgress set inside the caller's transaction
func refreshEnrollmentProgress(tx *gorm.DB, enrollment *courseModels.Enrollment) (*progressSnapshot, error) {
	snapshot, err := courseProgressSnapshot(tx, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"total_lessons":     snapshot.TotalLessons,
		"completed_lessons": snapshot.CompletedLessons,
		"progress":          snapshot.Overall,
	}
	if err := tx.Model(enrollment).Updates(updates).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

// GetUserProgress gets the user's module-wise and overall progress in a course.
// Percentages are recomputed from the LessonProgress set on every read.
func GetUserProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	enrollment, err := getActiveEnrollment(database.Database.Db, userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	snapshot, err := courseProgressSnapshot(database.Database.Db, userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment":        enrollment,
		"module_progress":   snapshot.Modules,
		"overall_progress":  snapshot.Overall,
		"total_lessons":     snapshot.TotalLessons,
		"completed_lessons": snapshot.CompletedLessons,
	})
}
