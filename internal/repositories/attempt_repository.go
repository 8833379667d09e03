package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/courseplatform/backend/internal/models"
	"github.com/courseplatform/backend/internal/scoring"
)

type attemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *sql.DB) *attemptRepository {
	return &attemptRepository{
		db: db,
	}
}

// Submit records a scored attempt and its answers in one transaction.
//
// The quiz row is locked for the duration of the transaction so the duplicate check
// and the insert cannot interleave with a concurrent submission to the same quiz.
// The retry flag is read from the locked row.
//
// Returns an error wrapping models.ErrNotFound if the quiz is gone,
// or models.ErrConflict if retries are disabled and the user already has an attempt.
func (r *attemptRepository) Submit(ctx context.Context, attempt *models.QuizAttempt) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var allowRetry bool
	err = tx.QueryRowContext(ctx, `SELECT allow_retry FROM quizzes WHERE id = ? FOR UPDATE`, attempt.QuizID).Scan(&allowRetry)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("quiz %d: %w", attempt.QuizID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock quiz: %w", err)
	}

	if !allowRetry {
		var exists bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM quiz_attempts WHERE quiz_id = ? AND user_id = ?)`,
			attempt.QuizID, attempt.UserID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check previous attempts: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: quiz %d already submitted and retries are disabled", models.ErrConflict, attempt.QuizID)
		}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO quiz_attempts (quiz_id, user_id, score, total, started_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, attempt.QuizID, attempt.UserID, attempt.Score, attempt.Total, attempt.StartedAt, attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	attempt.ID = int(id)

	if len(attempt.Answers) > 0 {
		values := make([]string, len(attempt.Answers))
		args := make([]any, 0, len(attempt.Answers)*4)
		for i := range attempt.Answers {
			answer := &attempt.Answers[i]
			answer.AttemptID = attempt.ID
			selected, err := encodeSelected(answer.SelectedOptionID)
			if err != nil {
				return err
			}
			values[i] = "(?, ?, ?, ?)"
			args = append(args, attempt.ID, answer.QuestionID, selected, answer.IsCorrect)
		}

		query := fmt.Sprintf(`
			INSERT INTO attempt_answers (attempt_id, question_id, selected_option_ids, is_correct)
			VALUES %s
		`, strings.Join(values, ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to create attempt answers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByQuiz retrieves the attempts of a quiz with their answers, oldest first.
// A non-zero "userID" restricts the result to that user's attempts.
func (r *attemptRepository) GetByQuiz(ctx context.Context, quizID, userID int) ([]models.QuizAttempt, error) {
	query := `
		SELECT a.id, a.quiz_id, a.user_id, a.score, a.total, a.started_at, a.created_at,
			aa.question_id, aa.selected_option_ids, aa.is_correct
		FROM quiz_attempts a
		LEFT JOIN attempt_answers aa ON aa.attempt_id = a.id
		WHERE a.quiz_id = ?`
	args := []any{quizID}
	if userID != 0 {
		query += ` AND a.user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY a.created_at, a.id, aa.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.QuizAttempt{}
	for rows.Next() {
		var (
			attempt    models.QuizAttempt
			startedAt  sql.NullTime
			questionID sql.NullInt64
			selected   sql.NullString
			isCorrect  sql.NullBool
		)
		if err := rows.Scan(
			&attempt.ID,
			&attempt.QuizID,
			&attempt.UserID,
			&attempt.Score,
			&attempt.Total,
			&startedAt,
			&attempt.CreatedAt,
			&questionID,
			&selected,
			&isCorrect,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}

		n := len(attempts)
		if n == 0 || attempts[n-1].ID != attempt.ID {
			if startedAt.Valid {
				attempt.StartedAt = &startedAt.Time
			}
			attempt.Passed = scoring.IsPass(attempt.Score, attempt.Total)
			attempt.Answers = []models.AttemptAnswer{}
			attempts = append(attempts, attempt)
			n++
		}
		if questionID.Valid {
			selectedID, err := decodeSelected(selected.String)
			if err != nil {
				return nil, err
			}
			attempts[n-1].Answers = append(attempts[n-1].Answers, models.AttemptAnswer{
				AttemptID:        attempt.ID,
				QuestionID:       int(questionID.Int64),
				SelectedOptionID: selectedID,
				IsCorrect:        isCorrect.Bool,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}

	return attempts, nil
}

// encodeSelected encodes the selection as the JSON array stored in selected_option_ids
func encodeSelected(optionID *int) (string, error) {
	ids := []int{}
	if optionID != nil {
		ids = append(ids, *optionID)
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode selected options: %w", err)
	}
	return string(b), nil
}

func decodeSelected(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode selected options: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}
