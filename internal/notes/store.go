package notes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/studysphere/backend/internal/models"
)

// Store is the Postgres-backed note table. Every statement filters by user_id.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const noteColumns = `id, user_id, title, content, created_at, updated_at`

func scanNote(row interface{ Scan(...interface{}) error }) (*models.Note, error) {
	var n models.Note
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) List(ctx context.Context, userID int64) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *Store) Get(ctx context.Context, userID, id int64) (*models.Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

// GetMany returns the caller's notes among ids, in no particular order.
func (s *Store) GetMany(ctx context.Context, userID int64, ids []int64) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = $1 AND id = ANY($2)`,
		userID, pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *Store) Create(ctx context.Context, userID int64, title, content string) (*models.Note, error) {
	now := time.Now().UTC()
	return scanNote(s.db.QueryRowContext(ctx,
		`INSERT INTO notes (user_id, title, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING `+noteColumns,
		userID, title, content, now,
	))
}

func (s *Store) Update(ctx context.Context, userID, id int64, title, content string) (*models.Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx,
		`UPDATE notes SET title = $1, content = $2, updated_at = $3
		 WHERE id = $4 AND user_id = $5
		 RETURNING `+noteColumns,
		title, content, time.Now().UTC(), id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

func (s *Store) Delete(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
