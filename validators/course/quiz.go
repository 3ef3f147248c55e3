package courseValidator

import (
	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// QuizAnswerInput is one submitted answer, keyed by question ID
type QuizAnswerInput struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
}

// QuizSubmissionRequest is the body of a quiz submission. Answers may cover
// only a subset of the quiz's questions; unanswered questions score zero.
type QuizSubmissionRequest struct {
	Answers          []QuizAnswerInput `json:"answers" validate:"dive"`
	TimeTakenSeconds int               `json:"time_taken_seconds" validate:"min=0"`
}

func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, lessonID, ok := lessonRef(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course or Lesson ID!", nil)
		}

		reqData := new(QuizSubmissionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "TimeTakenSeconds":
					errors["time_taken_seconds"] = "Time taken must not be negative!"
				case "QuestionID":
					errors["answers"] = "Each answer must reference a question ID!"
				default:
					errors[fieldErr.Field()] = "Invalid value!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedQuizSubmission", reqData)
		return c.Next()
	}
}

func GetQuizQuestions() fiber.Handler {
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
