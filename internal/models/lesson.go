package models

import "time"

// Lesson represents a lesson inside a course
type Lesson struct {
	ID              int       `json:"id"`
	CourseID        int       `json:"courseId"`
	Title           string    `json:"title"`
	OrderIndex      int       `json:"orderIndex"`
	Content         string    `json:"content,omitempty"`
	VideoURL        string    `json:"videoUrl,omitempty"`
	DurationSeconds int       `json:"durationSeconds"`
	IsPreview       bool      `json:"isPreview"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateLessonRequest represents a request to create a lesson; the order index is assigned by the server
type CreateLessonRequest struct {
	Title           string `json:"title" validate:"required,max=255"`
	Content         string `json:"content"`
	VideoURL        string `json:"videoUrl" validate:"omitempty,url"`
	DurationSeconds int    `json:"durationSeconds" validate:"gte=0"`
	IsPreview       bool   `json:"isPreview"`
}

// UpdateLessonRequest represents a partial lesson update
type UpdateLessonRequest struct {
	Title           *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Content         *string `json:"content,omitempty"`
	VideoURL        *string `json:"videoUrl,omitempty" validate:"omitempty,url"`
	DurationSeconds *int    `json:"durationSeconds,omitempty" validate:"omitempty,gte=0"`
	IsPreview       *bool   `json:"isPreview,omitempty"`
}

// IsEmpty reports whether the update carries no fields
func (r *UpdateLessonRequest) IsEmpty() bool {
	return r.Title == nil && r.Content == nil && r.VideoURL == nil && r.DurationSeconds == nil && r.IsPreview == nil
}

// ReorderLessonsRequest lists every lesson id of a course in the new order
type ReorderLessonsRequest struct {
	LessonIDs []int `json:"lessonIds" validate:"required,min=1,dive,gt=0"`
}
