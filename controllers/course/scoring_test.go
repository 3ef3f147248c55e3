package controllers

import (
	"testing"

	courseModels "lms/models/course"
	courseValidator "lms/validators/course"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func question(id uint, qType, correct string, points int) courseModels.QuizQuestion {
	return courseModels.QuizQuestion{
		Model:         gorm.Model{ID: id},
		QuestionType:  qType,
		CorrectAnswer: correct,
		Points:        points,
	}
}

func answer(id uint, value string) courseValidator.QuizAnswerInput {
	return courseValidator.QuizAnswerInput{QuestionID: id, Answer: value}
}

func TestScoreQuizDeterministicVector(t *testing.T) {
	// Index coercion on the multiple-choice side, trimmed case-insensitive
	// matching on the short-answer side
	questions := []courseModels.QuizQuestion{
		question(1, courseModels.QuestionMultipleChoice, "1", 10),
		question(2, courseModels.QuestionShortAnswer, "paris", 10),
	}
	answers := []courseValidator.QuizAnswerInput{
		answer(1, "1"),
		answer(2, "Paris "),
	}

	score := scoreQuiz(questions, answers)

	assert.Equal(t, 20.0, score.Score)
	assert.Equal(t, 20, score.TotalPoints)
	assert.Equal(t, 100, score.Percentage)
	assert.True(t, score.Results[0].Correct)
	assert.True(t, score.Results[1].Correct)
}

func TestScoreQuizIndexCoercion(t *testing.T) {
	questions := []courseModels.QuizQuestion{
		question(1, courseModels.QuestionMultipleChoice, "2", 10),
	}

	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"matching index", "2", true},
		{"padded index", " 2 ", true},
		{"wrong index", "1", false},
		{"non-numeric answer scores zero without error", "two", false},
		{"empty answer", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scoreQuiz(questions, []courseValidator.QuizAnswerInput{answer(1, tt.answer)})
			assert.Equal(t, tt.correct, score.Results[0].Correct)
			if tt.correct {
				assert.Equal(t, 100, score.Percentage)
			} else {
				assert.Equal(t, 0, score.Percentage)
			}
		})
	}
}

func TestScoreQuizTrueFalse(t *testing.T) {
	questions := []courseModels.QuizQuestion{
		question(1, courseModels.QuestionTrueFalse, "0", 5),
	}

	score := scoreQuiz(questions, []courseValidator.QuizAnswerInput{answer(1, "0")})
	assert.Equal(t, 100, score.Percentage)

	score = scoreQuiz(questions, []courseValidator.QuizAnswerInput{answer(1, "1")})
	assert.Equal(t, 0, score.Percentage)
}

func TestScoreQuizShortAnswerMatching(t *testing.T) {
	questions := []courseModels.QuizQuestion{
		question(1, courseModels.QuestionShortAnswer, "Goroutine", 10),
	}

	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"exact", "Goroutine", true},
		{"case-insensitive", "goroutine", true},
		{"whitespace-trimmed", "  goroutine  ", true},
		{"wrong text", "thread", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scoreQuiz(questions, []courseValidator.QuizAnswerInput{answer(1, tt.answer)})
			assert.Equal(t, tt.correct, score.Results[0].Correct)
		})
	}
}

func TestScoreQuizEssayPartialCredit(t *testing.T) {
	// Essay and code answers cannot be auto-graded; they get half credit and a
	// needs-review flag regardless of content
	questions := []courseModels.QuizQuestion{
		question(1, courseModels.QuestionEssay, "", 10),
		question(2, courseModels.QuestionCode, "", 10),
	}
	answers := []courseValidator.QuizAnswerInput{
		answer(1, "my essay"),
		answer(2, "func main() {}"),
	}

	score := scoreQuiz(questions, answers)

	assert.Equal(t, 10.0, score.Score)
	assert.Equal(t, 20, score.TotalPoints)
	assert.Equal(t, 50, score.Percentage)
	assert.True(t, score.Results[0].NeedsReview)
	assert.True(t, score.Results[1].NeedsReview)
	assert.False(t, score.Results[0].Correct)
}

func TestScoreQuizMissingAnswersTolerated(t *testing.T) {
	questions := []courseModels.QuizQuestion{
		question(1, courseModels.QuestionMultipleChoice, "1", 10),
		question(2, courseModels.QuestionShortAnswer, "paris", 10),
	}

	// Only one of two questions answered; the other scores zero and the
	// result stays complete and valid
	score := scoreQuiz(questions, []courseValidator.QuizAnswerInput{answer(1, "1")})

	assert.Equal(t, 10.0, score.Score)
	assert.Equal(t, 20, score.TotalPoints)
	assert.Equal(t, 50, score.Percentage)
	assert.Len(t, score.Results, 2)
	assert.True(t, score.Results[0].Correct)
	assert.False(t, score.Results[1].Correct)

	// No answers at all is still a valid submission
	score = scoreQuiz(questions, nil)
	assert.Equal(t, 0.0, score.Score)
	assert.Equal(t, 0, score.Percentage)
	assert.Len(t, score.Results, 2)
}

func TestScoreQuizRoundsFinalPercentageOnly(t *testing.T) {
	// One essay (5 of 10 points) and two correct of two 10-point questions:
	// 25/30 = 83.33 -> 83. The half point stays exact in the sum.
	questions := []courseModels.QuizQuestion{
		question(1, courseModels.QuestionMultipleChoice, "0", 10),
		question(2, courseModels.QuestionShortAnswer, "channel", 10),
		question(3, courseModels.QuestionEssay, "", 10),
	}
	answers := []courseValidator.QuizAnswerInput{
		answer(1, "0"),
		answer(2, "channel"),
		answer(3, "..."),
	}

	score := scoreQuiz(questions, answers)

	assert.Equal(t, 25.0, score.Score)
	assert.Equal(t, 30, score.TotalPoints)
	assert.Equal(t, 83, score.Percentage)
}

func TestQuizFeedback(t *testing.T) {
	assert.Contains(t, quizFeedback(100, 70, true), "Perfect score")
	assert.Contains(t, quizFeedback(80, 70, true), "scored 80%")
	assert.Contains(t, quizFeedback(60, 70, false), "needed 70%")
}
