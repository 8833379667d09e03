package services

import (
	"context"
	"sort"

	"github.com/courseplatform/backend/internal/models"
	"github.com/courseplatform/backend/internal/scoring"
)

const (
	pointsPerLesson     = 10
	pointsPerPassedQuiz = 20
)

// ReportRepository defines methods for reading report aggregates over published courses
type ReportRepository interface {
	// GetEnrollmentCounts counts enrollments per published course
	GetEnrollmentCounts(ctx context.Context) ([]models.EnrollmentReportItem, error)
	// GetCompletionStats returns lesson, enrollment and completed (user, lesson) counts per published course
	GetCompletionStats(ctx context.Context) ([]models.CompletionReportItem, error)
	// GetLessonActivity returns every lesson with its duration and distinct completers
	GetLessonActivity(ctx context.Context) ([]models.LessonActivity, error)
	// GetQuizActivity returns every quiz with its distinct attempting users
	GetQuizActivity(ctx context.Context) ([]models.QuizActivity, error)
	// GetQuizAttemptScores groups attempts by quiz, score and total
	GetQuizAttemptScores(ctx context.Context) ([]models.AttemptScore, error)
	// GetUserCompletions counts lesson completions per user
	GetUserCompletions(ctx context.Context) ([]models.UserCompletions, error)
	// GetUserAttemptScores groups attempts by user, score and total
	GetUserAttemptScores(ctx context.Context) ([]models.AttemptScore, error)
}

type reportService struct {
	reportRepo ReportRepository
}

// NewReportService creates a new report service
func NewReportService(reportRepo ReportRepository) *reportService {
	return &reportService{
		reportRepo: reportRepo,
	}
}

// EnrollmentReport returns the enrollment count of every published course
func (s *reportService) EnrollmentReport(ctx context.Context) ([]models.EnrollmentReportItem, error) {
	return s.reportRepo.GetEnrollmentCounts(ctx)
}

// CompletionReport returns the share of lessons completed by enrolled users per course.
// Courses without lessons or without enrollments are left out.
func (s *reportService) CompletionReport(ctx context.Context) ([]models.CompletionReportItem, error) {
	stats, err := s.reportRepo.GetCompletionStats(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.CompletionReportItem, 0, len(stats))
	for _, st := range stats {
		if st.TotalLessons == 0 || st.EnrollmentCount == 0 {
			continue
		}
		st.CompletionPercent = scoring.Percent(float64(st.CompletedCount), float64(st.TotalLessons*st.EnrollmentCount))
		items = append(items, st)
	}
	return items, nil
}

// DropoffReport returns, per course, every lesson or quiz reached by the fewest distinct users
func (s *reportService) DropoffReport(ctx context.Context) ([]models.DropoffReportItem, error) {
	lessons, err := s.reportRepo.GetLessonActivity(ctx)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.reportRepo.GetQuizActivity(ctx)
	if err != nil {
		return nil, err
	}

	var courseOrder []int
	byCourse := make(map[int][]models.DropoffReportItem)
	add := func(item models.DropoffReportItem) {
		if _, ok := byCourse[item.CourseID]; !ok {
			courseOrder = append(courseOrder, item.CourseID)
		}
		byCourse[item.CourseID] = append(byCourse[item.CourseID], item)
	}
	for _, l := range lessons {
		add(models.DropoffReportItem{
			CourseID:  l.CourseID,
			Type:      models.DropoffItemLesson,
			ItemID:    l.LessonID,
			Title:     l.LessonTitle,
			UserCount: l.CompletionCount,
		})
	}
	for _, q := range quizzes {
		add(models.DropoffReportItem{
			CourseID:  q.CourseID,
			Type:      models.DropoffItemQuiz,
			ItemID:    q.QuizID,
			Title:     q.Title,
			UserCount: q.UserCount,
		})
	}

	sort.Ints(courseOrder)
	items := []models.DropoffReportItem{}
	for _, courseID := range courseOrder {
		candidates := byCourse[courseID]
		lowest := candidates[0].UserCount
		for _, c := range candidates[1:] {
			lowest = min(lowest, c.UserCount)
		}
		for _, c := range candidates {
			if c.UserCount == lowest {
				items = append(items, c)
			}
		}
	}
	return items, nil
}

// AverageTimeReport lists every lesson with its duration, preceded by a course row holding
// the completer-weighted average duration of its lessons.
// Lessons without duration or without completers do not count toward the course average.
func (s *reportService) AverageTimeReport(ctx context.Context) ([]models.AvgTimeReportItem, error) {
	lessons, err := s.reportRepo.GetLessonActivity(ctx)
	if err != nil {
		return nil, err
	}

	items := []models.AvgTimeReportItem{}
	for start := 0; start < len(lessons); {
		end := start
		for end < len(lessons) && lessons[end].CourseID == lessons[start].CourseID {
			end++
		}
		group := lessons[start:end]

		var weighted, completers float64
		for _, l := range group {
			if l.DurationSeconds <= 0 || l.CompletionCount <= 0 {
				continue
			}
			weighted += float64(l.DurationSeconds) * float64(l.CompletionCount)
			completers += float64(l.CompletionCount)
		}
		average := 0.0
		if completers > 0 {
			average = scoring.Round2(weighted / completers)
		}
		items = append(items, models.AvgTimeReportItem{
			Scope:           models.AvgTimeScopeCourse,
			CourseID:        group[0].CourseID,
			Title:           group[0].CourseTitle,
			AverageSeconds:  average,
			CompletionCount: int(completers),
		})

		for _, l := range group {
			lessonID := l.LessonID
			items = append(items, models.AvgTimeReportItem{
				Scope:           models.AvgTimeScopeLesson,
				CourseID:        l.CourseID,
				LessonID:        &lessonID,
				Title:           l.LessonTitle,
				AverageSeconds:  float64(l.DurationSeconds),
				CompletionCount: l.CompletionCount,
			})
		}
		start = end
	}
	return items, nil
}

// QuizPerformanceReport returns per quiz the number of scored attempts, their average
// score percentage and the share of passing attempts
func (s *reportService) QuizPerformanceReport(ctx context.Context) ([]models.QuizPerformanceItem, error) {
	quizzes, err := s.reportRepo.GetQuizActivity(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := s.reportRepo.GetQuizAttemptScores(ctx)
	if err != nil {
		return nil, err
	}

	type totals struct {
		attempts int
		percent  float64
		passes   int
	}
	byQuiz := make(map[int]*totals)
	for _, sc := range scores {
		if sc.Total <= 0 {
			continue
		}
		t, ok := byQuiz[sc.QuizID]
		if !ok {
			t = &totals{}
			byQuiz[sc.QuizID] = t
		}
		t.attempts += sc.Count
		t.percent += float64(sc.Count) * float64(sc.Score) / float64(sc.Total) * 100
		if scoring.IsPass(sc.Score, sc.Total) {
			t.passes += sc.Count
		}
	}

	items := make([]models.QuizPerformanceItem, 0, len(quizzes))
	for _, q := range quizzes {
		item := models.QuizPerformanceItem{QuizID: q.QuizID, CourseID: q.CourseID, Title: q.Title}
		if t, ok := byQuiz[q.QuizID]; ok && t.attempts > 0 {
			item.AttemptCount = t.attempts
			item.AverageScore = scoring.Round2(t.percent / float64(t.attempts))
			item.PassRate = scoring.Percent(float64(t.passes), float64(t.attempts))
		}
		items = append(items, item)
	}
	return items, nil
}

// Leaderboard ranks users with any lesson completion or passing attempt.
// Every completion earns 10 points and every passing attempt 20, so passing retries count again.
func (s *reportService) Leaderboard(ctx context.Context) ([]models.LeaderboardItem, error) {
	completions, err := s.reportRepo.GetUserCompletions(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := s.reportRepo.GetUserAttemptScores(ctx)
	if err != nil {
		return nil, err
	}

	users := make(map[int]*models.LeaderboardItem)
	entry := func(userID int, name string) *models.LeaderboardItem {
		item, ok := users[userID]
		if !ok {
			item = &models.LeaderboardItem{UserID: userID, FullName: name}
			users[userID] = item
		}
		return item
	}
	for _, c := range completions {
		entry(c.UserID, c.FullName).LessonCompletions += c.Count
	}
	for _, sc := range scores {
		if scoring.IsPass(sc.Score, sc.Total) {
			entry(sc.UserID, sc.FullName).PassedAttempts += sc.Count
		}
	}

	items := make([]models.LeaderboardItem, 0, len(users))
	for _, item := range users {
		if item.LessonCompletions == 0 && item.PassedAttempts == 0 {
			continue
		}
		item.Points = pointsPerLesson*item.LessonCompletions + pointsPerPassedQuiz*item.PassedAttempts
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Points != items[j].Points {
			return items[i].Points > items[j].Points
		}
		if items[i].FullName != items[j].FullName {
			return items[i].FullName < items[j].FullName
		}
		return items[i].UserID < items[j].UserID
	})
	return items, nil
}
