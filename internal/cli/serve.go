package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courseplatform/backend/internal/auth/middleware"
	"github.com/courseplatform/backend/internal/auth/service"
	"github.com/courseplatform/backend/internal/cache"
	"github.com/courseplatform/backend/internal/config"
	"github.com/courseplatform/backend/internal/handlers"
	"github.com/courseplatform/backend/internal/logger"
	loggerMiddleware "github.com/courseplatform/backend/internal/logger/middleware"
	"github.com/courseplatform/backend/internal/middlewares"
	"github.com/courseplatform/backend/internal/models"
	"github.com/courseplatform/backend/internal/repositories"
	"github.com/courseplatform/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const maxRequestSize = 1 << 20 // 1MB

func newServeCmd() *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "start without applying pending migrations")
	return cmd
}

func runServer(ctx context.Context, skipMigrations bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		return err
	}
	defer logger.Sync()

	logger.Logger.Info("Starting course platform service")

	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	if !skipMigrations {
		if err := runMigrations(db, migrationSource()); err != nil {
			logger.Logger.Error("Failed to run migrations", zap.Error(err))
			return err
		}
	}

	redisClient := connectRedis(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(cfg, db, redisClient),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			logger.Logger.Error("Server failed to start", zap.Error(err))
			return err
		}
	}

	logger.Logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Logger.Info("Server exited")
	return nil
}

// connectRedis returns a client for the answer key cache, or nil when caching is off or Redis is unreachable
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.Cache.AnswerKeyTTL <= 0 {
		logger.Logger.Info("Answer key cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Logger.Warn("Redis unavailable, answer keys will be read from the database",
			zap.String("addr", cfg.RedisAddr()),
			zap.Error(err),
		)
		client.Close()
		return nil
	}
	return client
}

// newRouter builds the repositories, services and handlers and mounts them under /api/v1
func newRouter(cfg *config.Config, db *sql.DB, redisClient *redis.Client) http.Handler {
	tokenValidator := service.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Initialize repositories
	courseRepo := repositories.NewCourseRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)
	quizRepo := repositories.NewQuizRepository(db)
	attemptRepo := repositories.NewAttemptRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	completionRepo := repositories.NewLessonCompletionRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	answerKeys := cache.NewAnswerKeyCache(redisClient, quizRepo, cfg.Cache.AnswerKeyTTL, logger.Logger)

	// Initialize services
	courseService := services.NewCourseService(courseRepo, quizRepo, answerKeys, logger.Logger)
	lessonService := services.NewLessonService(courseRepo, lessonRepo, enrollmentRepo)
	quizService := services.NewQuizService(courseRepo, quizRepo, answerKeys, logger.Logger)
	attemptService := services.NewAttemptService(answerKeys, enrollmentRepo, attemptRepo, quizRepo, courseRepo, logger.Logger)
	enrollmentService := services.NewEnrollmentService(courseRepo, lessonRepo, enrollmentRepo, completionRepo)
	progressService := services.NewProgressService(progressRepo, enrollmentRepo)
	certificateService := services.NewCertificateService(progressRepo, enrollmentRepo)
	reviewService := services.NewReviewService(courseRepo, enrollmentRepo, reviewRepo)
	reportService := services.NewReportService(reportRepo)

	// Initialize handlers
	courseHandler := handlers.NewCourseHandler(courseService, logger.Logger)
	lessonHandler := handlers.NewLessonHandler(lessonService, logger.Logger)
	quizHandler := handlers.NewQuizHandler(quizService, logger.Logger)
	attemptHandler := handlers.NewAttemptHandler(attemptService, cfg.Quiz.RevealCorrectToStudents, logger.Logger)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService, progressService, certificateService, logger.Logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, logger.Logger)
	reportHandler := handlers.NewReportHandler(reportService, logger.Logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(tokenValidator)
	optionalAuth := middleware.OptionalAuthMiddleware(tokenValidator)
	instructorMiddleware := middleware.RoleMiddleware(tokenValidator, int(models.RoleInstructor))
	adminMiddleware := middleware.RoleMiddleware(tokenValidator, int(models.RoleAdmin))
	apiKeyMiddleware := middleware.APIKeyMiddleware(cfg.APIKey)

	r := chi.NewRouter()

	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(maxRequestSize))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api/v1", func(r chi.Router) {
		courseHandler.RegisterRoutes(r, optionalAuth, authMiddleware, instructorMiddleware)
		lessonHandler.RegisterRoutes(r, optionalAuth, instructorMiddleware)
		quizHandler.RegisterRoutes(r, optionalAuth, instructorMiddleware)
		attemptHandler.RegisterRoutes(r, authMiddleware, instructorMiddleware)
		enrollmentHandler.RegisterRoutes(r, authMiddleware)
		reviewHandler.RegisterRoutes(r, authMiddleware)
		reportHandler.RegisterRoutes(r, adminMiddleware, apiKeyMiddleware)
	})

	return r
}
