package models

import "time"

// Enrollment represents a user enrolled in a course
type Enrollment struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	CourseID     int       `json:"courseId"`
	LastLessonID *int      `json:"lastLessonId,omitempty"`
	EnrolledAt   time.Time `json:"enrolledAt"`
}

// LessonCompletion records that a user completed a lesson
type LessonCompletion struct {
	UserID      int       `json:"userId"`
	LessonID    int       `json:"lessonId"`
	CompletedAt time.Time `json:"completedAt"`
}

// CourseProgress represents a user's progress through a course
type CourseProgress struct {
	CourseID         int     `json:"courseId"`
	TotalLessons     int     `json:"totalLessons"`
	CompletedLessons int     `json:"completedLessons"`
	TotalQuizzes     int     `json:"totalQuizzes"`
	PassedQuizzes    int     `json:"passedQuizzes"`
	PercentComplete  float64 `json:"percentComplete"`
}

// EnrollmentWithProgress represents an enrollment with its course and progress
type EnrollmentWithProgress struct {
	Enrollment Enrollment     `json:"enrollment"`
	Course     Course         `json:"course"`
	Progress   CourseProgress `json:"progress"`
}

// CertificateEligibility reports whether a user finished every lesson of a course
type CertificateEligibility struct {
	CourseID         int  `json:"courseId"`
	UserID           int  `json:"userId"`
	TotalLessons     int  `json:"totalLessons"`
	CompletedLessons int  `json:"completedLessons"`
	Eligible         bool `json:"eligible"`
}
