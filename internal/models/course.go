package models

import "time"

// CourseLevel represents the difficulty level of a course
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

// Course represents a course
type Course struct {
	ID            int         `json:"id"`
	InstructorID  int         `json:"instructorId"`
	Title         string      `json:"title"`
	Subtitle      string      `json:"subtitle,omitempty"`
	Description   string      `json:"description,omitempty"`
	Category      string      `json:"category,omitempty"`
	Language      string      `json:"language,omitempty"`
	Level         CourseLevel `json:"level"`
	Price         *float64    `json:"price,omitempty"`
	ThumbnailURL  string      `json:"thumbnailUrl,omitempty"`
	IsPublished   bool        `json:"isPublished"`
	AverageRating float64     `json:"averageRating"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// CourseFilter narrows course list queries
type CourseFilter struct {
	// PublishedOnly restricts the list to published courses
	PublishedOnly bool
	// InstructorID restricts the list to one instructor's courses when non-zero
	InstructorID int
	Category     string
	Level        CourseLevel
	Search       string
	Page         int
	Count        int
}

// CreateCourseRequest represents a request to create a course
type CreateCourseRequest struct {
	Title        string      `json:"title" validate:"required,max=255"`
	Subtitle     string      `json:"subtitle" validate:"max=255"`
	Description  string      `json:"description"`
	Category     string      `json:"category" validate:"max=100"`
	Language     string      `json:"language" validate:"max=50"`
	Level        CourseLevel `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price        *float64    `json:"price" validate:"omitempty,gte=0"`
	ThumbnailURL string      `json:"thumbnailUrl" validate:"omitempty,url"`
	IsPublished  bool        `json:"isPublished"`
}

// UpdateCourseRequest represents a partial course update; nil fields are left untouched
type UpdateCourseRequest struct {
	Title        *string      `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Subtitle     *string      `json:"subtitle,omitempty" validate:"omitempty,max=255"`
	Description  *string      `json:"description,omitempty"`
	Category     *string      `json:"category,omitempty" validate:"omitempty,max=100"`
	Language     *string      `json:"language,omitempty" validate:"omitempty,max=50"`
	Level        *CourseLevel `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price        *float64     `json:"price,omitempty" validate:"omitempty,gte=0"`
	ThumbnailURL *string      `json:"thumbnailUrl,omitempty" validate:"omitempty,url"`
	IsPublished  *bool        `json:"isPublished,omitempty"`
}

// IsEmpty reports whether the update carries no fields
func (r *UpdateCourseRequest) IsEmpty() bool {
	return r.Title == nil && r.Subtitle == nil && r.Description == nil && r.Category == nil &&
		r.Language == nil && r.Level == nil && r.Price == nil && r.ThumbnailURL == nil && r.IsPublished == nil
}
