package models

import "time"

// SubmittedAnswer is one (question, selected option) pair of a submission.
// A nil SelectedOptionID is an unanswered question.
type SubmittedAnswer struct {
	QuestionID       int  `json:"questionId" validate:"required,gt=0"`
	SelectedOptionID *int `json:"selectedOptionId,omitempty" validate:"omitempty,gt=0"`
}

// SubmitQuizRequest represents a quiz submission
type SubmitQuizRequest struct {
	Answers   []SubmittedAnswer `json:"answers" validate:"dive"`
	StartedAt *time.Time        `json:"startedAt,omitempty"`
}

// AttemptAnswer represents a persisted, judged answer
type AttemptAnswer struct {
	AttemptID        int  `json:"attemptId"`
	QuestionID       int  `json:"questionId"`
	SelectedOptionID *int `json:"selectedOptionId,omitempty"`
	IsCorrect        bool `json:"isCorrect"`
	// CorrectOptionID is only filled when the caller may see the answer key
	CorrectOptionID *int `json:"correctOptionId,omitempty"`
}

// QuizAttempt represents an immutable quiz attempt record
type QuizAttempt struct {
	ID        int             `json:"id"`
	QuizID    int             `json:"quizId"`
	UserID    int             `json:"userId"`
	Score     int             `json:"score"`
	Total     int             `json:"total"`
	Passed    bool            `json:"passed"`
	StartedAt *time.Time      `json:"startedAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Answers   []AttemptAnswer `json:"answers"`
}
