package utils

import (
	"log"
	"time"

	"lms/config"
	"lms/database"
	courseModels "lms/models/course"

	"github.com/go-resty/resty/v2"
)

// Notifications are strictly fire-and-forget: every failure is logged and
// swallowed so the operation that triggered the event is never affected.

// NotifyQuizPassed emails the user about a passed quiz and emits the webhook
// event when one is configured
func NotifyQuizPassed(email, name, lessonTitle string, percentage int) {
	if err := SendEmail([]string{email}, "Quiz passed: "+lessonTitle, quizPassedEmail(name, lessonTitle, percentage)); err != nil {
		log.Printf("[NOTIFY] Failed to send quiz-passed email to %s: %v", email, err)
	}

	postWebhook(map[string]interface{}{
		"event":      "quiz.passed",
		"email":      email,
		"lesson":     lessonTitle,
		"percentage": percentage,
	})
}

// NotifyCourseCompleted emails the user about a fully completed course
func NotifyCourseCompleted(email, name string, courseID uint) {
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err != nil {
		log.Printf("[NOTIFY] Failed to load course %d for completion email: %v", courseID, err)
		return
	}

	if err := SendEmail([]string{email}, "Course completed: "+course.Title, courseCompletedEmail(name, course.Title)); err != nil {
		log.Printf("[NOTIFY] Failed to send course-completed email to %s: %v", email, err)
	}

	postWebhook(map[string]interface{}{
		"event":     "course.completed",
		"email":     email,
		"course_id": courseID,
		"course":    course.Title,
	})
}

func postWebhook(payload map[string]interface{}) {
	url := config.AppConfig.NotifyWebhookURL
	if url == "" {
		return
	}

	client := resty.New().SetTimeout(10 * time.Second)
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(url)
	if err != nil {
		log.Printf("[NOTIFY] Webhook delivery failed: %v", err)
		return
	}
	if resp.StatusCode() >= 300 {
		log.Printf("[NOTIFY] Webhook returned status %d", resp.StatusCode())
	}
}
