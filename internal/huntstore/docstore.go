package huntstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// DocStore keeps each hunt as a JSONB document in the hunts table. The
// schema comes from the migrations package.
type DocStore struct {
	db   *sql.DB
	opts Options
}

func NewDocStore(db *sql.DB, opts Options) *DocStore {
	return &DocStore{db: db, opts: opts}
}

func (s *DocStore) CreateHunt(ctx context.Context, id string, state treasurehunt.State) (Hunt, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return Hunt{}, err
	}
	t := now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO hunts (id, version, created_at, updated_at, data) VALUES (?, 1, ?, ?, jsonb(?))`,
		id, t.Format(timeLayout), t.Format(timeLayout), string(data),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Hunt{}, ErrExists
		}
		return Hunt{}, fmt.Errorf("inserting hunt %s: %w", id, err)
	}
	return Hunt{ID: id, Version: 1, State: state.Clone(), CreatedAt: t.Truncate(time.Millisecond), UpdatedAt: t.Truncate(time.Millisecond)}, nil
}

func (s *DocStore) ListHunts(ctx context.Context) ([]Hunt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version, created_at, updated_at, json(data) FROM hunts ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hunts := []Hunt{}
	for rows.Next() {
		h, err := scanHunt(rows)
		if err != nil {
			return nil, err
		}
		hunts = append(hunts, h)
	}
	return hunts, rows.Err()
}

func (s *DocStore) Hunt(ctx context.Context, id string) (Hunt, error) {
	return s.load(ctx, id)
}

func (s *DocStore) Apply(ctx context.Context, id string, action treasurehunt.Action) (Result, error) {
	return apply(ctx, s, s.opts, id, action)
}

// Close is a no-op; the caller owns the *sql.DB.
func (s *DocStore) Close() error { return nil }

func (s *DocStore) load(ctx context.Context, id string) (Hunt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, version, created_at, updated_at, json(data) FROM hunts WHERE id = ?`, id,
	)
	h, err := scanHunt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Hunt{}, ErrNotFound
	}
	return h, err
}

func (s *DocStore) commit(ctx context.Context, prev Hunt, next treasurehunt.State) (Hunt, error) {
	data, err := json.Marshal(next)
	if err != nil {
		return Hunt{}, err
	}
	t := now()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return Hunt{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE hunts SET version = version + 1, updated_at = ?, data = jsonb(?)
		 WHERE id = ? AND version = ?`,
		t.Format(timeLayout), string(data), prev.ID, prev.Version,
	)
	if err != nil {
		return Hunt{}, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return Hunt{}, err
	}
	if n == 0 {
		return Hunt{}, ErrConflict
	}
	if err := tx.Commit(); err != nil {
		return Hunt{}, err
	}

	return Hunt{
		ID:        prev.ID,
		Version:   prev.Version + 1,
		State:     next,
		CreatedAt: prev.CreatedAt,
		UpdatedAt: t.Truncate(time.Millisecond),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHunt(row scanner) (Hunt, error) {
	var (
		h                    Hunt
		createdAt, updatedAt string
		data                 string
	)
	if err := row.Scan(&h.ID, &h.Version, &createdAt, &updatedAt, &data); err != nil {
		return Hunt{}, err
	}
	if err := json.Unmarshal([]byte(data), &h.State); err != nil {
		return Hunt{}, fmt.Errorf("decoding hunt %s: %w", h.ID, err)
	}
	h.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	h.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return h, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
