package controllers

import (
	"errors"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// getPublishedLesson loads a published lesson scoped to the course it was
// requested under
func getPublishedLesson(db *gorm.DB, lessonID uint, courseID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := db.Where("id = ? AND course_id = ? AND is_deleted = ? AND is_published = ?",
		lessonID, courseID, false, true).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// completeLesson applies the one-way idempotent completion rule shared by the
// manual complete endpoint and the quiz engine: the first completion sets
// CompletedAt, every later call is a no-op.
func completeLesson(tx *gorm.DB, userID uint, lesson *courseModels.Lesson, enrollment *courseModels.Enrollment) (bool, error) {
	var lp courseModels.LessonProgress
	err := tx.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&lp).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		lp = courseModels.LessonProgress{
			UserID:       userID,
			LessonID:     lesson.ID,
			CourseID:     lesson.CourseID,
			EnrollmentID: enrollment.ID,
			IsCompleted:  true,
			CompletedAt:  &now,
		}
		createErr := tx.Create(&lp).Error
		if createErr == nil {
			return true, nil
		}
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return false, createErr
		}
		// Lost a race against a concurrent first report; fall through to the
		// update path against the row that won
		if err := tx.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&lp).Error; err != nil {
			return false, err
		}
	} else if err != nil {
		return false, err
	}

	if lp.IsCompleted {
		// Idempotent: CompletedAt stays untouched, nothing is double-counted
		return false, nil
	}

	updates := map[string]interface{}{"is_completed": true}
	if lp.CompletedAt == nil {
		now := time.Now()
		updates["completed_at"] = &now
	}
	if err := tx.Model(&lp).Updates(updates).Error; err != nil {
		return false, err
	}
	return true, nil
}

// RecordWatchedTime upserts the watched-seconds counter for a lesson. Reports
// arrive as a periodic stream; out-of-order and duplicate reports are absorbed
// by keeping the maximum value seen, clamped to the lesson duration when known.
func RecordWatchedTime(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)
	reqData := c.Locals("validatedWatchedTime").(*courseValidator.WatchedTimeRequest)

	enrollment, err := getActiveEnrollment(database.Database.Db, userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	lesson, err := getPublishedLesson(database.Database.Db, uint(lessonID), uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	watched := *reqData.WatchedSeconds
	if lesson.DurationSeconds > 0 && watched > lesson.DurationSeconds {
		watched = lesson.DurationSeconds
	}

	var lp courseModels.LessonProgress
	err = database.Database.Db.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&lp).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		lp = courseModels.LessonProgress{
			UserID:         userID,
			LessonID:       lesson.ID,
			CourseID:       lesson.CourseID,
			EnrollmentID:   enrollment.ID,
			WatchedSeconds: watched,
		}
		if err := database.Database.Db.Create(&lp).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record watched time!", nil)
		}
	case err != nil:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record watched time!", nil)
	default:
		// Monotonic: a late or duplicate report never winds the counter back
		if watched > lp.WatchedSeconds {
			if err := database.Database.Db.Model(&lp).Update("watched_seconds", watched).Error; err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record watched time!", nil)
			}
		}
	}

	database.Database.Db.Model(enrollment).Update("last_activity_at", time.Now())

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Watched time recorded!", fiber.Map{
		"lesson_id":       lesson.ID,
		"watched_seconds": watched,
	})
}

// MarkLessonComplete marks a lesson complete and returns the recomputed module
// and course percentages. Calling it twice is safe: the second call changes
// nothing and reports the same state.
func MarkLessonComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	// Enrollment check comes before the lesson lookup so a missing enrollment
	// surfaces as 403, distinguishable from a 404 for a missing lesson
	enrollment, err := getActiveEnrollment(database.Database.Db, userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	lesson, err := getPublishedLesson(database.Database.Db, uint(lessonID), uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	tx := database.Database.Db.Begin()
	if tx.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson complete!", nil)
	}

	changed, err := completeLesson(tx, userID, lesson, enrollment)
	if err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson complete!", nil)
	}

	snapshot, err := refreshEnrollmentProgress(tx, enrollment)
	if err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson complete!", nil)
	}

	if err := tx.Commit().Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson complete!", nil)
	}

	// Completion notifications are fire-and-forget: delivery failures are
	// logged inside utils and never affect this response
	if changed && snapshot.Overall >= 100 {
		go utils.NotifyCourseCompleted(user.Email, user.Name, uint(courseID))
	}

	moduleProgress := 0
	for _, mod := range snapshot.Modules {
		if mod.ModuleID == lesson.ModuleID {
			moduleProgress = mod.Progress
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as complete!", fiber.Map{
		"module_progress":   moduleProgress,
		"overall_progress":  snapshot.Overall,
		"completed_lessons": snapshot.CompletedLessons,
	})
}

// MarkLessonIncomplete is the manual two-way toggle. Unlike the quiz-triggered
// path it may clear the completion flag, but CompletedAt is retained so the
// first completion timestamp survives toggling.
func MarkLessonIncomplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	enrollment, err := getActiveEnrollment(database.Database.Db, userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	lesson, err := getPublishedLesson(database.Database.Db, uint(lessonID), uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	tx := database.Database.Db.Begin()
	if tx.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson incomplete!", nil)
	}

	var lp courseModels.LessonProgress
	if err := tx.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&lp).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No progress row means the lesson was never completed
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson is not completed!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson incomplete!", nil)
	}

	if lp.IsCompleted {
		if err := tx.Model(&lp).Update("is_completed", false).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson incomplete!", nil)
		}
	}

	if _, err := refreshEnrollmentProgress(tx, enrollment); err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson incomplete!", nil)
	}

	if err := tx.Commit().Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson incomplete!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as incomplete!", nil)
}
