package controllers

import (
	"encoding/json"
	"time"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

func passingScoreFor(lesson *courseModels.Lesson) int {
	if lesson.PassingScore != nil {
		return *lesson.PassingScore
	}
	if config.AppConfig != nil {
		return config.AppConfig.DefaultPassingScore
	}
	return 70
}

// GetQuizQuestions returns the questions of a quiz lesson with correct answers
// stripped out for users
func GetQuizQuestions(c *fiber.Ctx) error {
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

	if _, err := getActiveEnrollment(database.Database.Db, userID, uint(courseID)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	lesson, err := getPublishedLesson(database.Database.Db, uint(lessonID), uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if lesson.LessonType != courseModels.LessonTypeQuiz {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This lesson is not a quiz!", nil)
	}

	var questions []courseModels.QuizQuestion
	if err := database.Database.Db.Where("lesson_id = ? AND is_deleted = ?", lesson.ID, false).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	// Remove correct answers for users
	for i := range questions {
		questions[i].CorrectAnswer = ""
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz questions fetched successfully!", fiber.Map{
		"lesson":        lesson,
		"questions":     questions,
		"passing_score": passingScoreFor(lesson),
	})
}

// SubmitQuiz validates, scores and records a quiz submission. Attempt
// persistence and lesson completion happen in one transaction: either the
// whole submission lands or none of it does.
func SubmitQuiz(c *fiber.Ctx) error {
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
	reqData := c.Locals("validatedQuizSubmission").(*courseValidator.QuizSubmissionRequest)

	enrollment, err := getActiveEnrollment(database.Database.Db, userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	lesson, err := getPublishedLesson(database.Database.Db, uint(lessonID), uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if lesson.LessonType != courseModels.LessonTypeQuiz {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This lesson is not a quiz!", nil)
	}

	var questions []courseModels.QuizQuestion
	if err := database.Database.Db.Where("lesson_id = ? AND is_deleted = ?", lesson.ID, false).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	if len(questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
			"This quiz has no questions yet. Please contact the course author!", nil)
	}

	score := scoreQuiz(questions, reqData.Answers)
	passingScore := passingScoreFor(lesson)
	passed := score.Percentage >= passingScore

	answersJSON, err := json.Marshal(reqData.Answers)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid answers payload!", nil)
	}

	tx := database.Database.Db.Begin()
	if tx.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	// Get attempt number
	var attemptCount int64
	if err := tx.Model(&courseModels.QuizAttempt{}).
		Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).
		Count(&attemptCount).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	attempt := courseModels.QuizAttempt{
		UserID:        userID,
		LessonID:      lesson.ID,
		Answers:       datatypes.JSON(answersJSON),
		Score:         score.Score,
		TotalPoints:   score.TotalPoints,
		Percentage:    score.Percentage,
		Passed:        passed,
		TimeTakenSec:  reqData.TimeTakenSeconds,
		SubmittedAt:   time.Now(),
		AttemptNumber: int(attemptCount) + 1,
	}

	if err := tx.Create(&attempt).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	// A recorded attempt completes the lesson under the one-way rule; quiz
	// completion never un-completes
	changed, err := completeLesson(tx, userID, lesson, enrollment)
	if err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	snapshot, err := refreshEnrollmentProgress(tx, enrollment)
	if err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	if err := tx.Commit().Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	// Fire-and-forget notifications; failures never affect the result
	if passed {
		go utils.NotifyQuizPassed(user.Email, user.Name, lesson.Title, score.Percentage)
	}
	if changed && snapshot.Overall >= 100 {
		go utils.NotifyCourseCompleted(user.Email, user.Name, uint(courseID))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted!", fiber.Map{
		"attempt":          attempt,
		"score":            score.Score,
		"total_points":     score.TotalPoints,
		"percentage":       score.Percentage,
		"passed":           passed,
		"passing_score":    passingScore,
		"results":          score.Results,
		"feedback":         quizFeedback(score.Percentage, passingScore, passed),
		"overall_progress": snapshot.Overall,
	})
}
