package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/courseplatform/backend/internal/cache"
	"github.com/courseplatform/backend/internal/logger"
	"github.com/courseplatform/backend/internal/models"
	"github.com/courseplatform/backend/internal/repositories"
	"github.com/courseplatform/backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Catalog is the seed file layout
type Catalog struct {
	Users   []SeedUser   `yaml:"users"`
	Courses []SeedCourse `yaml:"courses"`
}

// SeedUser is a user to upsert by email
type SeedUser struct {
	Email    string `yaml:"email"`
	FullName string `yaml:"fullName"`
	Role     string `yaml:"role"`
}

// SeedCourse is a course with its lessons and quizzes.
// Instructor is the email of one of the catalog's users.
type SeedCourse struct {
	Instructor  string       `yaml:"instructor"`
	Title       string       `yaml:"title"`
	Subtitle    string       `yaml:"subtitle"`
	Description string       `yaml:"description"`
	Category    string       `yaml:"category"`
	Language    string       `yaml:"language"`
	Level       string       `yaml:"level"`
	Price       *float64     `yaml:"price"`
	Published   bool         `yaml:"published"`
	Lessons     []SeedLesson `yaml:"lessons"`
	Quizzes     []SeedQuiz   `yaml:"quizzes"`
}

// SeedLesson is a lesson appended to its course in file order
type SeedLesson struct {
	Title           string `yaml:"title"`
	Content         string `yaml:"content"`
	VideoURL        string `yaml:"videoUrl"`
	DurationSeconds int    `yaml:"durationSeconds"`
	Preview         bool   `yaml:"preview"`
}

// SeedQuiz is a quiz with its questions
type SeedQuiz struct {
	Title      string         `yaml:"title"`
	AllowRetry bool           `yaml:"allowRetry"`
	Questions  []SeedQuestion `yaml:"questions"`
}

// SeedQuestion is a question; options keep their file order
type SeedQuestion struct {
	Text    string       `yaml:"text"`
	Options []SeedOption `yaml:"options"`
}

// SeedOption is an answer option
type SeedOption struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// LoadCatalog reads and parses a seed file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &catalog, nil
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, courses, lessons and quizzes from a YAML catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := LoadCatalog(file)
			if err != nil {
				return err
			}
			return withDatabase(func(db *sql.DB) error {
				courseRepo := repositories.NewCourseRepository(db)
				quizRepo := repositories.NewQuizRepository(db)
				passThrough := cache.NewAnswerKeyCache(nil, quizRepo, 0, logger.Logger)
				seeder := newCatalogSeeder(
					repositories.NewUserRepository(db),
					services.NewCourseService(courseRepo, quizRepo, passThrough, logger.Logger),
					services.NewLessonService(courseRepo, repositories.NewLessonRepository(db), repositories.NewEnrollmentRepository(db)),
					services.NewQuizService(courseRepo, quizRepo, passThrough, logger.Logger),
				)
				return seeder.Seed(cmd.Context(), catalog)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed/catalog.yaml", "path to the YAML catalog")
	return cmd
}

// UserUpserter inserts or updates users by email
type UserUpserter interface {
	Upsert(ctx context.Context, user *models.User) error
}

// CourseCreator creates courses
type CourseCreator interface {
	Create(ctx context.Context, actor models.Actor, req *models.CreateCourseRequest) (*models.Course, error)
}

// LessonCreator appends lessons to courses
type LessonCreator interface {
	Create(ctx context.Context, actor models.Actor, courseID int, req *models.CreateLessonRequest) (*models.Lesson, error)
}

// QuizCreator creates quizzes with their questions
type QuizCreator interface {
	Create(ctx context.Context, actor models.Actor, courseID int, req *models.CreateQuizRequest) (*models.Quiz, error)
}

type catalogSeeder struct {
	users    UserUpserter
	courses  CourseCreator
	lessons  LessonCreator
	quizzes  QuizCreator
	validate *validator.Validate
}

func newCatalogSeeder(users UserUpserter, courses CourseCreator, lessons LessonCreator, quizzes QuizCreator) *catalogSeeder {
	return &catalogSeeder{
		users:    users,
		courses:  courses,
		lessons:  lessons,
		quizzes:  quizzes,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// check validates a request against its struct tags
func (s *catalogSeeder) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return nil
}

// Seed upserts the catalog users, then creates each course as its instructor
// together with its lessons and quizzes
func (s *catalogSeeder) Seed(ctx context.Context, catalog *Catalog) error {
	actors := make(map[string]models.Actor, len(catalog.Users))
	for _, u := range catalog.Users {
		role, err := models.ParseRole(u.Role)
		if err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		user := &models.User{Email: u.Email, FullName: u.FullName, Role: role}
		if err := s.users.Upsert(ctx, user); err != nil {
			return fmt.Errorf("failed to upsert user %s: %w", u.Email, err)
		}
		actors[u.Email] = models.Actor{UserID: user.ID, Role: role}
	}

	for _, c := range catalog.Courses {
		actor, ok := actors[c.Instructor]
		if !ok {
			return fmt.Errorf("course %q: instructor %s is not in the catalog users: %w", c.Title, c.Instructor, models.ErrValidation)
		}

		courseReq := &models.CreateCourseRequest{
			Title:       c.Title,
			Subtitle:    c.Subtitle,
			Description: c.Description,
			Category:    c.Category,
			Language:    c.Language,
			Level:       models.CourseLevel(c.Level),
			Price:       c.Price,
			IsPublished: c.Published,
		}
		if err := s.check(courseReq); err != nil {
			return fmt.Errorf("course %q: %w", c.Title, err)
		}
		course, err := s.courses.Create(ctx, actor, courseReq)
		if err != nil {
			return fmt.Errorf("failed to create course %q: %w", c.Title, err)
		}

		for _, l := range c.Lessons {
			lessonReq := &models.CreateLessonRequest{
				Title:           l.Title,
				Content:         l.Content,
				VideoURL:        l.VideoURL,
				DurationSeconds: l.DurationSeconds,
				IsPreview:       l.Preview,
			}
			if err := s.check(lessonReq); err != nil {
				return fmt.Errorf("lesson %q: %w", l.Title, err)
			}
			if _, err := s.lessons.Create(ctx, actor, course.ID, lessonReq); err != nil {
				return fmt.Errorf("failed to create lesson %q: %w", l.Title, err)
			}
		}

		for _, q := range c.Quizzes {
			quizReq := quizRequest(q)
			if err := s.check(quizReq); err != nil {
				return fmt.Errorf("quiz %q: %w", q.Title, err)
			}
			if _, err := s.quizzes.Create(ctx, actor, course.ID, quizReq); err != nil {
				return fmt.Errorf("failed to create quiz %q: %w", q.Title, err)
			}
		}

		logger.Logger.Info("course seeded",
			zap.Int("course_id", course.ID),
			zap.String("title", course.Title),
			zap.Int("lessons", len(c.Lessons)),
			zap.Int("quizzes", len(c.Quizzes)),
		)
	}

	return nil
}

func quizRequest(q SeedQuiz) *models.CreateQuizRequest {
	req := &models.CreateQuizRequest{
		Title:      q.Title,
		AllowRetry: q.AllowRetry,
		Questions:  make([]models.CreateQuestionRequest, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		options := make([]models.CreateOptionRequest, 0, len(question.Options))
		for _, o := range question.Options {
			options = append(options, models.CreateOptionRequest{Text: o.Text, IsCorrect: o.Correct})
		}
		req.Questions = append(req.Questions, models.CreateQuestionRequest{Text: question.Text, Options: options})
	}
	return req
}
