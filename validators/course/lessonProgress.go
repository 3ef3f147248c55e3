package courseValidator

import (
	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// WatchedTimeRequest is the body of a periodic watched-time report
type WatchedTimeRequest struct {
	WatchedSeconds *int `json:"watched_seconds" validate:"required,min=0"`
}

func lessonRef(c *fiber.Ctx) (int, int, bool) {
	courseID, ok := parseCourseID(c, "course_id")
	if !ok {
		return 0, 0, false
	}
	lessonID, ok := parseCourseID(c, "lesson_id")
	if !ok {
		return 0, 0, false
	}
	return courseID, lessonID, true
}

func RecordWatchedTime() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, lessonID, ok := lessonRef(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course or Lesson ID!", nil)
		}

		reqData := new(WatchedTimeRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				if fieldErr.Tag() == "min" {
					errors["watched_seconds"] = "Watched seconds must not be negative!"
				} else {
					errors["watched_seconds"] = "Watched seconds is required!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedWatchedTime", reqData)
		return c.Next()
	}
}

func LessonCompletion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, lessonID, ok := lessonRef(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course or Lesson ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

func GetCourseProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseCourseID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}
