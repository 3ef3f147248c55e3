package controllers

import (
	"errors"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// getActiveEnrollment is the authorization gate shared by the progress tracker
// and the quiz engine: a user may only act on a course they hold an ACTIVE
// enrollment in.
func getActiveEnrollment(db *gorm.DB, userID uint, courseID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := db.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, courseID, courseModels.EnrollmentActive).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// syncEnrolledStudents re-derives the course's enrolled-student counter from
// the active-enrollment count inside the caller's transaction. Deriving instead
// of incrementing keeps the counter drift-free and floored at zero.
func syncEnrolledStudents(tx *gorm.DB, courseID uint) error {
	var active int64
	if err := tx.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, courseModels.EnrollmentActive).
		Count(&active).Error; err != nil {
		return err
	}
	return tx.Model(&courseModels.Course{}).Where("id = ?", courseID).
		Update("enrolled_students", active).Error
}

// EnrollInCourse enrolls the user into a course, reactivating a previously
// cancelled enrollment in place rather than inserting a duplicate row
func EnrollInCourse(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Retrieve validated course ID and enroll body
	courseID := c.Locals("courseID").(int)
	reqData := c.Locals("validatedEnroll").(*courseValidator.EnrollRequest)

	// Check if course exists and is active
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND status = ? AND is_published = ?",
		courseID, false, "ACTIVE", true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not active!", nil)
	}

	now := time.Now()
	var enrollment courseModels.Enrollment

	tx := database.Database.Db.Begin()
	if tx.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	switch {
	case err == nil:
		if enrollment.Status == courseModels.EnrollmentActive {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
		}
		// Reactivate the cancelled row in place so the enrollment ID stays
		// stable and historical progress references remain valid
		updates := map[string]interface{}{
			"status":           courseModels.EnrollmentActive,
			"price_cents":      reqData.PriceCents,
			"access_type":      reqData.AccessType,
			"enrolled_at":      now,
			"last_activity_at": now,
			"total_lessons":    course.TotalLessons,
		}
		if err := tx.Model(&enrollment).Updates(updates).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		enrollment = courseModels.Enrollment{
			UserID:         userID,
			CourseID:       uint(courseID),
			Status:         courseModels.EnrollmentActive,
			PriceCents:     reqData.PriceCents,
			AccessType:     reqData.AccessType,
			EnrolledAt:     now,
			LastActivityAt: now,
			TotalLessons:   course.TotalLessons,
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			tx.Rollback()
			// The unique index on (user_id, course_id) serializes concurrent
			// double-submission; the loser of the race lands here
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
			}
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
		}

	default:
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	if err := syncEnrolledStudents(tx, uint(courseID)); err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	if err := tx.Commit().Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}

// CancelEnrollment soft-cancels an active enrollment. The row is retained as
// history and may be reactivated by a later enroll.
func CancelEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	tx := database.Database.Db.Begin()
	if tx.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel enrollment!", nil)
	}

	enrollment, err := getActiveEnrollment(tx, userID, uint(courseID))
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Terminal "nothing to cancel" result, not a retryable error
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active enrollment found for this course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel enrollment!", nil)
	}

	updates := map[string]interface{}{
		"status":           courseModels.EnrollmentCancelled,
		"last_activity_at": time.Now(),
	}
	if err := tx.Model(enrollment).Updates(updates).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel enrollment!", nil)
	}

	if err := syncEnrolledStudents(tx, uint(courseID)); err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel enrollment!", nil)
	}

	if err := tx.Commit().Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel enrollment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment cancelled successfully!", nil)
}

// GetEnrollments lists the user's enrollments with pagination
func GetEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	reqData := c.Locals("validatedEnrollmentList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("user_id = ?", userID)

	// Get total count
	var total int64
	db.Count(&total)

	// Fetch paginated data
	var enrollments []courseModels.Enrollment
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	response := map[string]interface{}{
		"enrollments": enrollments,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", response)
}
