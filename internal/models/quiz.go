package models

import "time"

// Quiz represents a quiz attached to a course
type Quiz struct {
	ID         int        `json:"id"`
	CourseID   int        `json:"courseId"`
	Title      string     `json:"title"`
	AllowRetry bool       `json:"allowRetry"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Questions  []Question `json:"questions,omitempty"`
}

// Question represents a multiple-choice question
type Question struct {
	ID           int      `json:"id"`
	QuizID       int      `json:"quizId"`
	Text         string   `json:"text"`
	DisplayOrder int      `json:"displayOrder"`
	Options      []Option `json:"options"`
}

// Option represents an answer option.
// IsCorrect is nil when correctness is hidden from the caller.
type Option struct {
	ID           int    `json:"id"`
	QuestionID   int    `json:"questionId"`
	Text         string `json:"text"`
	IsCorrect    *bool  `json:"isCorrect,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
}

// QuizListItem represents a quiz in list responses
type QuizListItem struct {
	ID            int    `json:"id"`
	CourseID      int    `json:"courseId"`
	Title         string `json:"title"`
	AllowRetry    bool   `json:"allowRetry"`
	QuestionCount int    `json:"questionCount"`
}

// CreateOptionRequest represents an option inside a create question request
type CreateOptionRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
	// DisplayOrder defaults to the option's position in the request when nil
	DisplayOrder *int `json:"displayOrder,omitempty"`
}

// CreateQuestionRequest represents a request to add a question to a quiz
type CreateQuestionRequest struct {
	Text         string                `json:"text" validate:"required"`
	DisplayOrder *int                  `json:"displayOrder,omitempty"`
	Options      []CreateOptionRequest `json:"options" validate:"required,min=2,dive"`
}

// CreateQuizRequest represents a request to create a quiz, optionally with its questions
type CreateQuizRequest struct {
	Title      string                  `json:"title" validate:"required,max=255"`
	AllowRetry bool                    `json:"allowRetry"`
	Questions  []CreateQuestionRequest `json:"questions" validate:"dive"`
}

// HideCorrectness strips option correctness from every question
func (q *Quiz) HideCorrectness() {
	for i := range q.Questions {
		for j := range q.Questions[i].Options {
			q.Questions[i].Options[j].IsCorrect = nil
		}
	}
}
