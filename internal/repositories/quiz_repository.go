package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
	"github.com/courseplatform/backend/internal/scoring"
)

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB) *quizRepository {
	return &quizRepository{
		db: db,
	}
}

// GetByID retrieves a quiz without its questions
func (r *quizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	query := `
		SELECT id, course_id, title, allow_retry, created_at, updated_at
		FROM quizzes
		WHERE id = ?
		LIMIT 1
	`

	var quiz models.Quiz
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&quiz.ID,
		&quiz.CourseID,
		&quiz.Title,
		&quiz.AllowRetry,
		&quiz.CreatedAt,
		&quiz.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quiz %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}

	return &quiz, nil
}

// GetWithQuestions retrieves a quiz with its questions and options in display order
func (r *quizRepository) GetWithQuestions(ctx context.Context, id int) (*models.Quiz, error) {
	quiz, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT q.id, q.text, q.display_order, o.id, o.text, o.is_correct, o.display_order
		FROM quiz_questions q
		LEFT JOIN question_options o ON o.question_id = q.id
		WHERE q.quiz_id = ?
		ORDER BY q.display_order, q.id, o.display_order, o.id
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions: %w", err)
	}
	defer rows.Close()

	quiz.Questions = []models.Question{}
	for rows.Next() {
		var (
			question    models.Question
			optionID    sql.NullInt64
			optionText  sql.NullString
			isCorrect   sql.NullBool
			optionOrder sql.NullInt64
		)
		if err := rows.Scan(&question.ID, &question.Text, &question.DisplayOrder, &optionID, &optionText, &isCorrect, &optionOrder); err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}

		n := len(quiz.Questions)
		if n == 0 || quiz.Questions[n-1].ID != question.ID {
			question.QuizID = id
			question.Options = []models.Option{}
			quiz.Questions = append(quiz.Questions, question)
			n++
		}
		if optionID.Valid {
			correct := isCorrect.Bool
			quiz.Questions[n-1].Options = append(quiz.Questions[n-1].Options, models.Option{
				ID:           int(optionID.Int64),
				QuestionID:   question.ID,
				Text:         optionText.String,
				IsCorrect:    &correct,
				DisplayOrder: int(optionOrder.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quiz questions: %w", err)
	}

	return quiz, nil
}

// GetByCourse retrieves the quizzes of a course with their question counts
func (r *quizRepository) GetByCourse(ctx context.Context, courseID int) ([]models.QuizListItem, error) {
	query := `
		SELECT z.id, z.course_id, z.title, z.allow_retry, COUNT(q.id)
		FROM quizzes z
		LEFT JOIN quiz_questions q ON q.quiz_id = z.id
		WHERE z.course_id = ?
		GROUP BY z.id, z.course_id, z.title, z.allow_retry
		ORDER BY z.id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := []models.QuizListItem{}
	for rows.Next() {
		var item models.QuizListItem
		if err := rows.Scan(&item.ID, &item.CourseID, &item.Title, &item.AllowRetry, &item.QuestionCount); err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quizzes: %w", err)
	}

	return quizzes, nil
}

// Create creates a quiz together with its questions and options.
// The quiz's ID and questions are set on success.
func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz, questions []models.CreateQuestionRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO quizzes (course_id, title, allow_retry) VALUES (?, ?, ?)`,
		quiz.CourseID, quiz.Title, quiz.AllowRetry,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	quiz.ID = int(id)

	quiz.Questions = make([]models.Question, 0, len(questions))
	for i := range questions {
		order := i + 1
		if questions[i].DisplayOrder != nil {
			order = *questions[i].DisplayOrder
		}
		question, err := insertQuestion(ctx, tx, quiz.ID, order, &questions[i])
		if err != nil {
			return err
		}
		quiz.Questions = append(quiz.Questions, *question)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AddQuestion appends a question with its options to a quiz
func (r *quizRepository) AddQuestion(ctx context.Context, quizID int, req *models.CreateQuestionRequest) (*models.Question, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID int
	err = tx.QueryRowContext(ctx, `SELECT id FROM quizzes WHERE id = ? FOR UPDATE`, quizID).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quiz %d: %w", quizID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock quiz: %w", err)
	}

	var order int
	if req.DisplayOrder != nil {
		order = *req.DisplayOrder
	} else {
		err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(display_order), 0) + 1 FROM quiz_questions WHERE quiz_id = ?`, quizID).Scan(&order)
		if err != nil {
			return nil, fmt.Errorf("failed to get next display order: %w", err)
		}
	}

	question, err := insertQuestion(ctx, tx, quizID, order, req)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return question, nil
}

func insertQuestion(ctx context.Context, tx *sql.Tx, quizID, order int, req *models.CreateQuestionRequest) (*models.Question, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO quiz_questions (quiz_id, text, display_order) VALUES (?, ?, ?)`,
		quizID, req.Text, order,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	question := &models.Question{
		ID:           int(id),
		QuizID:       quizID,
		Text:         req.Text,
		DisplayOrder: order,
		Options:      make([]models.Option, 0, len(req.Options)),
	}
	for i, opt := range req.Options {
		optOrder := i + 1
		if opt.DisplayOrder != nil {
			optOrder = *opt.DisplayOrder
		}
		result, err := tx.ExecContext(ctx,
			`INSERT INTO question_options (question_id, text, is_correct, display_order) VALUES (?, ?, ?, ?)`,
			question.ID, opt.Text, opt.IsCorrect, optOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create option: %w", err)
		}
		optID, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}
		correct := opt.IsCorrect
		question.Options = append(question.Options, models.Option{
			ID:           int(optID),
			QuestionID:   question.ID,
			Text:         opt.Text,
			IsCorrect:    &correct,
			DisplayOrder: optOrder,
		})
	}

	return question, nil
}

// Delete deletes a quiz of a course; its questions, options, attempts and answers go with it
func (r *quizRepository) Delete(ctx context.Context, quizID, courseID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ? AND course_id = ?`, quizID, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	return checkAffected(result, fmt.Sprintf("quiz %d in course %d", quizID, courseID))
}

// LoadAnswerKey builds the grading snapshot of a quiz from the catalog
func (r *quizRepository) LoadAnswerKey(ctx context.Context, quizID int) (*scoring.AnswerKey, error) {
	quiz, err := r.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT q.id, o.id, o.is_correct, o.display_order
		FROM quiz_questions q
		LEFT JOIN question_options o ON o.question_id = q.id
		WHERE q.quiz_id = ?
		ORDER BY q.display_order, q.id, o.display_order, o.id
	`

	rows, err := r.db.QueryContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answer key: %w", err)
	}
	defer rows.Close()

	var (
		questionIDs []int
		options     = map[int][]scoring.KeyOption{}
	)
	for rows.Next() {
		var (
			questionID int
			optionID   sql.NullInt64
			isCorrect  sql.NullBool
			order      sql.NullInt64
		)
		if err := rows.Scan(&questionID, &optionID, &isCorrect, &order); err != nil {
			return nil, fmt.Errorf("failed to scan answer key row: %w", err)
		}
		if _, ok := options[questionID]; !ok {
			questionIDs = append(questionIDs, questionID)
			options[questionID] = []scoring.KeyOption{}
		}
		if optionID.Valid {
			options[questionID] = append(options[questionID], scoring.KeyOption{
				ID:           int(optionID.Int64),
				IsCorrect:    isCorrect.Bool,
				DisplayOrder: int(order.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answer key rows: %w", err)
	}

	key := &scoring.AnswerKey{
		QuizID:     quiz.ID,
		CourseID:   quiz.CourseID,
		AllowRetry: quiz.AllowRetry,
		Questions:  make([]scoring.KeyQuestion, 0, len(questionIDs)),
	}
	for _, questionID := range questionIDs {
		key.Questions = append(key.Questions, scoring.BuildQuestion(questionID, options[questionID]))
	}

	return key, nil
}
