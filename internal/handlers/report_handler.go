package handlers

import (
	"context"
	"net/http"

	"github.com/courseplatform/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportService is the interface that wraps the cross-course reports.
// Every report only covers published courses.
type ReportService interface {
	EnrollmentReport(ctx context.Context) ([]models.EnrollmentReportItem, error)
	CompletionReport(ctx context.Context) ([]models.CompletionReportItem, error)
	DropoffReport(ctx context.Context) ([]models.DropoffReportItem, error)
	AverageTimeReport(ctx context.Context) ([]models.AvgTimeReportItem, error)
	QuizPerformanceReport(ctx context.Context) ([]models.QuizPerformanceItem, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardItem, error)
}

// ReportHandler handles HTTP requests for reports and the leaderboard
type ReportHandler struct {
	BaseHandler
	service ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers the public leaderboard and the report routes.
// Reports are served twice: to admins under /admin/reports and to other services under /internal/reports.
func (h *ReportHandler) RegisterRoutes(r chi.Router, adminMiddleware, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.Get("/leaderboard/global", h.GetLeaderboard)

	reports := func(r chi.Router) {
		r.Get("/enrollments", h.GetEnrollmentReport)
		r.Get("/completion", h.GetCompletionReport)
		r.Get("/dropoffs", h.GetDropoffReport)
		r.Get("/average-time", h.GetAverageTimeReport)
		r.Get("/quiz-performance", h.GetQuizPerformanceReport)
		r.Get("/leaderboard", h.GetLeaderboard)
	}
	r.Route("/admin/reports", func(r chi.Router) {
		r.Use(adminMiddleware)
		reports(r)
	})
	r.Route("/internal/reports", func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		reports(r)
	})
}

func respondReport[T any](h *ReportHandler, w http.ResponseWriter, r *http.Request, action string, fetch func(context.Context) ([]T, error)) {
	items, err := fetch(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, action)
		return
	}
	if items == nil {
		items = []T{}
	}
	h.RespondJSON(w, http.StatusOK, items)
}

// GetEnrollmentReport handles GET /admin/reports/enrollments
// @Summary Enrollment counts per course
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.EnrollmentReportItem "Report"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/reports/enrollments [get]
func (h *ReportHandler) GetEnrollmentReport(w http.ResponseWriter, r *http.Request) {
	respondReport(h, w, r, "build enrollment report", h.service.EnrollmentReport)
}

// GetCompletionReport handles GET /admin/reports/completion
// @Summary Average lesson completion per course
// @Description Completed (user, lesson) pairs over lessons times enrollments; courses without lessons or enrollments are left out
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CompletionReportItem "Report"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/reports/completion [get]
func (h *ReportHandler) GetCompletionReport(w http.ResponseWriter, r *http.Request) {
	respondReport(h, w, r, "build completion report", h.service.CompletionReport)
}

// GetDropoffReport handles GET /admin/reports/dropoffs
// @Summary Drop-off points per course
// @Description Lessons and quizzes reached by the fewest distinct users in each course, ties included
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.DropoffReportItem "Report"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/reports/dropoffs [get]
func (h *ReportHandler) GetDropoffReport(w http.ResponseWriter, r *http.Request) {
	respondReport(h, w, r, "build drop-off report", h.service.DropoffReport)
}

// GetAverageTimeReport handles GET /admin/reports/average-time
// @Summary Time spent per lesson and course
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.AvgTimeReportItem "Report"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/reports/average-time [get]
func (h *ReportHandler) GetAverageTimeReport(w http.ResponseWriter, r *http.Request) {
	respondReport(h, w, r, "build average time report", h.service.AverageTimeReport)
}

// GetQuizPerformanceReport handles GET /admin/reports/quiz-performance
// @Summary Attempt count, average score and pass rate per quiz
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.QuizPerformanceItem "Report"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/reports/quiz-performance [get]
func (h *ReportHandler) GetQuizPerformanceReport(w http.ResponseWriter, r *http.Request) {
	respondReport(h, w, r, "build quiz performance report", h.service.QuizPerformanceReport)
}

// GetLeaderboard handles GET /leaderboard/global
// @Summary Global leaderboard
// @Description 10 points per lesson completion and 20 per passing quiz attempt, highest first, ties by name
// @Tags reports
// @Produce json
// @Success 200 {array} models.LeaderboardItem "Leaderboard"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /leaderboard/global [get]
func (h *ReportHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	respondReport(h, w, r, "build leaderboard", h.service.Leaderboard)
}
