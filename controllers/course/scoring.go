package controllers

import (
	"fmt"
	"strconv"
	"strings"

	courseModels "lms/models/course"
	courseValidator "lms/validators/course"
)

// questionResult is the per-question breakdown returned to the client for
// review after a submission
type questionResult struct {
	QuestionID     uint    `json:"question_id"`
	Correct        bool    `json:"correct"`
	PointsAwarded  float64 `json:"points_awarded"`
	PointsPossible int     `json:"points_possible"`
	CorrectAnswer  string  `json:"correct_answer"`
	// NeedsReview flags essay/code questions whose partial credit stands in
	// for manual grading, not a real assessment
	NeedsReview bool `json:"needs_review"`
}

type quizScore struct {
	Score       float64          `json:"score"`
	TotalPoints int              `json:"total_points"`
	Percentage  int              `json:"percentage"`
	Results     []questionResult `json:"results"`
}

// scoreQuiz scores a submission against the quiz definition. Point sums are
// kept exact; only the final percentage is rounded (half-up), so any two runs
// over the same inputs produce the identical percentage.
func scoreQuiz(questions []courseModels.QuizQuestion, answers []courseValidator.QuizAnswerInput) quizScore {
	submitted := make(map[uint]string, len(answers))
	for _, ans := range answers {
		submitted[ans.QuestionID] = ans.Answer
	}

	score := quizScore{Results: make([]questionResult, len(questions))}

	for i, q := range questions {
		answer, answered := submitted[q.ID]
		result := questionResult{
			QuestionID:     q.ID,
			PointsPossible: q.Points,
			CorrectAnswer:  q.CorrectAnswer,
		}

		switch q.QuestionType {
		case courseModels.QuestionMultipleChoice, courseModels.QuestionTrueFalse:
			// Both sides are coerced to integer indices; a non-numeric or
			// missing answer scores zero without raising an error
			if answered && indexMatches(answer, q.CorrectAnswer) {
				result.Correct = true
				result.PointsAwarded = float64(q.Points)
			}

		case courseModels.QuestionShortAnswer:
			if answered && textMatches(answer, q.CorrectAnswer) {
				result.Correct = true
				result.PointsAwarded = float64(q.Points)
			}

		case courseModels.QuestionEssay, courseModels.QuestionCode:
			// No automated check is possible; award half credit pending review
			result.NeedsReview = true
			result.PointsAwarded = float64(q.Points) / 2
		}

		score.Score += result.PointsAwarded
		score.TotalPoints += q.Points
		score.Results[i] = result
	}

	if score.TotalPoints > 0 {
		score.Percentage = courseModels.RoundPct(100 * score.Score / float64(score.TotalPoints))
	}
	return score
}

func indexMatches(submitted, correct string) bool {
	submittedIdx, err := strconv.Atoi(strings.TrimSpace(submitted))
	if err != nil {
		return false
	}
	correctIdx, err := strconv.Atoi(strings.TrimSpace(correct))
	if err != nil {
		return false
	}
	return submittedIdx == correctIdx
}

func textMatches(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

// quizFeedback picks the feedback copy for a scored submission
func quizFeedback(percentage int, passingScore int, passed bool) string {
	if percentage == 100 {
		return "Perfect score! You answered every question correctly."
	}
	if passed {
		return fmt.Sprintf("Congratulations! You scored %d%% and passed the quiz.", percentage)
	}
	return fmt.Sprintf("You scored %d%%, but needed %d%% to pass. Review the lesson and try again.", percentage, passingScore)
}
