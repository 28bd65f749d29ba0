package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/studysphere/backend/internal/models"
)

// Store persists graded tests. Rows are inserted once and never updated.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const testColumns = `id, user_id, difficulty, total_questions, correct_count, wrong_count, score,
	accuracy, xp_earned, time_used_seconds, note_ids, per_question_results, created_at`

func scanTest(row interface{ Scan(...interface{}) error }) (*models.Test, error) {
	var (
		t       models.Test
		elapsed sql.NullInt64
		results []byte
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Difficulty, &t.TotalQuestions, &t.CorrectCount, &t.WrongCount,
		&t.Score, &t.Accuracy, &t.XPEarned, &elapsed, pq.Array(&t.NoteIDs), &results, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if elapsed.Valid {
		secs := int(elapsed.Int64)
		t.TimeUsedSeconds = &secs
	}
	if t.NoteIDs == nil {
		t.NoteIDs = []int64{}
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &t.PerQuestionResults); err != nil {
			return nil, fmt.Errorf("decode per_question_results for test %d: %w", t.ID, err)
		}
	}
	if t.PerQuestionResults == nil {
		t.PerQuestionResults = []models.PerQuestionResult{}
	}
	return &t, nil
}

// Create inserts t and fills in its ID and CreatedAt.
func (s *Store) Create(ctx context.Context, t *models.Test) error {
	results, err := json.Marshal(t.PerQuestionResults)
	if err != nil {
		return fmt.Errorf("encode per_question_results: %w", err)
	}
	noteIDs := t.NoteIDs
	if noteIDs == nil {
		noteIDs = []int64{}
	}

	var elapsed sql.NullInt64
	if t.TimeUsedSeconds != nil {
		elapsed = sql.NullInt64{Int64: int64(*t.TimeUsedSeconds), Valid: true}
	}

	return s.db.QueryRowContext(ctx,
		`INSERT INTO tests (user_id, difficulty, total_questions, correct_count, wrong_count, score,
			accuracy, xp_earned, time_used_seconds, note_ids, per_question_results)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		t.UserID, t.Difficulty, t.TotalQuestions, t.CorrectCount, t.WrongCount, t.Score,
		t.Accuracy, t.XPEarned, elapsed, pq.Array(noteIDs), results,
	).Scan(&t.ID, &t.CreatedAt)
}

// List returns the user's tests oldest first.
func (s *Store) List(ctx context.Context, userID int64) ([]models.Test, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+testColumns+` FROM tests WHERE user_id = $1 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tests := []models.Test{}
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		tests = append(tests, *t)
	}
	return tests, rows.Err()
}

func (s *Store) Get(ctx context.Context, userID, id int64) (*models.Test, error) {
	t, err := scanTest(s.db.QueryRowContext(ctx,
		`SELECT `+testColumns+` FROM tests WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTestNotFound
	}
	return t, err
}
