package models

// EnrollmentReportItem is the enrollment count of one published course
type EnrollmentReportItem struct {
	CourseID        int    `json:"courseId"`
	Title           string `json:"title"`
	EnrollmentCount int    `json:"enrollmentCount"`
}

// CompletionReportItem is the average lesson completion of one published course
type CompletionReportItem struct {
	CourseID          int     `json:"courseId"`
	Title             string  `json:"title"`
	TotalLessons      int     `json:"totalLessons"`
	EnrollmentCount   int     `json:"enrollmentCount"`
	CompletedCount    int     `json:"completedCount"`
	CompletionPercent float64 `json:"completionPercent"`
}

// DropoffItemType distinguishes lesson and quiz drop-off points
type DropoffItemType string

const (
	DropoffItemLesson DropoffItemType = "lesson"
	DropoffItemQuiz   DropoffItemType = "quiz"
)

// DropoffReportItem is a lesson or quiz with the fewest distinct users in its course
type DropoffReportItem struct {
	CourseID  int             `json:"courseId"`
	Type      DropoffItemType `json:"type"`
	ItemID    int             `json:"itemId"`
	Title     string          `json:"title"`
	UserCount int             `json:"userCount"`
}

// AvgTimeScope distinguishes lesson and course rows of the average-time report
type AvgTimeScope string

const (
	AvgTimeScopeLesson AvgTimeScope = "lesson"
	AvgTimeScopeCourse AvgTimeScope = "course"
)

// AvgTimeReportItem is the time spent on a lesson or, weighted by completers, on a course
type AvgTimeReportItem struct {
	Scope           AvgTimeScope `json:"scope"`
	CourseID        int          `json:"courseId"`
	LessonID        *int         `json:"lessonId,omitempty"`
	Title           string       `json:"title"`
	AverageSeconds  float64      `json:"averageSeconds"`
	CompletionCount int          `json:"completionCount"`
}

// QuizPerformanceItem is the aggregate performance of one quiz
type QuizPerformanceItem struct {
	QuizID       int     `json:"quizId"`
	CourseID     int     `json:"courseId"`
	Title        string  `json:"title"`
	AttemptCount int     `json:"attemptCount"`
	AverageScore float64 `json:"averageScore"`
	PassRate     float64 `json:"passRate"`
}

// LeaderboardItem is one user's activity points
type LeaderboardItem struct {
	UserID            int    `json:"userId"`
	FullName          string `json:"fullName"`
	LessonCompletions int    `json:"lessonCompletions"`
	PassedAttempts    int    `json:"passedAttempts"`
	Points            int    `json:"points"`
}

// LessonActivity is a lesson of a published course with its distinct completer count
type LessonActivity struct {
	CourseID        int
	CourseTitle     string
	LessonID        int
	LessonTitle     string
	DurationSeconds int
	CompletionCount int
}

// QuizActivity is a quiz of a published course with its distinct attempting user count
type QuizActivity struct {
	CourseID  int
	QuizID    int
	Title     string
	UserCount int
}

// AttemptScore groups attempts sharing the same owner, score and total.
// Attempts are grouped by quiz or by user depending on the query; the other id is zero.
type AttemptScore struct {
	QuizID   int
	UserID   int
	FullName string
	Score    int
	Total    int
	Count    int
}

// UserCompletions is the number of lesson completions of one user
type UserCompletions struct {
	UserID   int
	FullName string
	Count    int
}
