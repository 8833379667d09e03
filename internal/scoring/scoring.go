// Package scoring judges quiz submissions against an answer key.
package scoring

import (
	"fmt"
	"math"
	"slices"

	"github.com/courseplatform/backend/internal/models"
)

// KeyOption is an option of a question as seen by the answer key
type KeyOption struct {
	ID           int  `json:"id"`
	IsCorrect    bool `json:"isCorrect"`
	DisplayOrder int  `json:"displayOrder"`
}

// KeyQuestion is a question with the ids of its options and the retained correct option
type KeyQuestion struct {
	ID        int   `json:"id"`
	OptionIDs []int `json:"optionIds"`
	// CorrectOptionID is nil when the question has no correct option
	CorrectOptionID *int `json:"correctOptionId,omitempty"`
}

// AnswerKey is a snapshot of a quiz definition used for grading
type AnswerKey struct {
	QuizID     int           `json:"quizId"`
	CourseID   int           `json:"courseId"`
	AllowRetry bool          `json:"allowRetry"`
	Questions  []KeyQuestion `json:"questions"`
}

// BuildQuestion builds a key question from its options.
// When several options are marked correct, the one with the lowest display order is retained, ties broken by lowest id.
func BuildQuestion(questionID int, options []KeyOption) KeyQuestion {
	q := KeyQuestion{ID: questionID, OptionIDs: make([]int, 0, len(options))}
	var best *KeyOption
	for i := range options {
		opt := options[i]
		q.OptionIDs = append(q.OptionIDs, opt.ID)
		if !opt.IsCorrect {
			continue
		}
		if best == nil || opt.DisplayOrder < best.DisplayOrder ||
			(opt.DisplayOrder == best.DisplayOrder && opt.ID < best.ID) {
			best = &opt
		}
	}
	if best != nil {
		id := best.ID
		q.CorrectOptionID = &id
	}
	return q
}

// Result is the outcome of scoring one submission
type Result struct {
	Score   int
	Total   int
	Answers []models.AttemptAnswer
}

// Passed reports whether the result clears the pass threshold
func (r Result) Passed() bool {
	return IsPass(r.Score, r.Total)
}

// Score judges the submitted answers against the key.
//
// Total is the number of questions in the key; unanswered questions simply count as wrong.
// Answers are returned in submission order with CorrectOptionID always filled where a correct option exists;
// callers strip it when the answer key must stay hidden.
//
// Returns an error wrapping models.ErrValidation when an answer references a question outside the quiz,
// an option outside its question, or repeats a question.
func Score(key *AnswerKey, answers []models.SubmittedAnswer) (Result, error) {
	questions := make(map[int]*KeyQuestion, len(key.Questions))
	for i := range key.Questions {
		questions[key.Questions[i].ID] = &key.Questions[i]
	}

	result := Result{Total: len(key.Questions), Answers: make([]models.AttemptAnswer, 0, len(answers))}
	seen := make(map[int]struct{}, len(answers))
	for _, answer := range answers {
		question, ok := questions[answer.QuestionID]
		if !ok {
			return Result{}, fmt.Errorf("%w: question %d does not belong to quiz %d", models.ErrValidation, answer.QuestionID, key.QuizID)
		}
		if _, dup := seen[answer.QuestionID]; dup {
			return Result{}, fmt.Errorf("%w: question %d answered more than once", models.ErrValidation, answer.QuestionID)
		}
		seen[answer.QuestionID] = struct{}{}

		if answer.SelectedOptionID != nil && !slices.Contains(question.OptionIDs, *answer.SelectedOptionID) {
			return Result{}, fmt.Errorf("%w: option %d does not belong to question %d", models.ErrValidation, *answer.SelectedOptionID, answer.QuestionID)
		}

		correct := answer.SelectedOptionID != nil && question.CorrectOptionID != nil &&
			*answer.SelectedOptionID == *question.CorrectOptionID
		if correct {
			result.Score++
		}
		result.Answers = append(result.Answers, models.AttemptAnswer{
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.SelectedOptionID,
			IsCorrect:        correct,
			CorrectOptionID:  question.CorrectOptionID,
		})
	}

	return result, nil
}

// IsPass is the single pass rule: at least half of the questions answered correctly.
// A quiz with no questions can never be passed.
func IsPass(score, total int) bool {
	return total > 0 && score*2 >= total
}

// Percent returns part/whole*100 rounded to two decimals, or 0 when whole is 0
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return Round2(part / whole * 100)
}

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
