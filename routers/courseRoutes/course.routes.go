package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course listing and details (published courses)
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.GetCourseDetail(), controllers.GetCourseDetails)

	// Enrollment lifecycle
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), controllers.EnrollInCourse)
	courseGroup.Post("/:id/unenroll", middleware.JWTMiddleware, validators.CancelEnrollment(), controllers.CancelEnrollment)

	// Lesson progress tracking
	courseGroup.Post("/:course_id/lesson/:lesson_id/watch", middleware.JWTMiddleware, validators.RecordWatchedTime(), controllers.RecordWatchedTime)
	courseGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.LessonCompletion(), controllers.MarkLessonComplete)
	courseGroup.Post("/:course_id/lesson/:lesson_id/incomplete", middleware.JWTMiddleware, validators.LessonCompletion(), controllers.MarkLessonIncomplete)

	// Quiz
	courseGroup.Get("/:course_id/lesson/:lesson_id/quiz", middleware.JWTMiddleware, validators.GetQuizQuestions(), controllers.GetQuizQuestions)
	courseGroup.Post("/:course_id/lesson/:lesson_id/quiz/submit", middleware.JWTMiddleware, validators.SubmitQuiz(), controllers.SubmitQuiz)

	// Progress tracking
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.GetCourseProgress(), controllers.GetUserProgress)

	// Certificate request
	courseGroup.Post("/:course_id/certificate/request", middleware.JWTMiddleware, validators.RequestCertificate(), controllers.RequestCertificate)

	// User enrollments and certificates
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, validators.EnrollmentList(), controllers.GetEnrollments)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
