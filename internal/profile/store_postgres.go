package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meridian/internal/sentinel"
)

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindRole(ctx context.Context, userID string) (string, error) {
	const q = `SELECT role FROM profiles WHERE user_id = $1`
	var role string
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
		}
		return "", fmt.Errorf("find role: %w", err)
	}
	return role, nil
}

func (s *PostgresStore) UpdateRole(ctx context.Context, userID string, role string) error {
	const q = `UPDATE profiles SET role = $1, updated_at = now() WHERE user_id = $2`
	res, err := s.db.ExecContext(ctx, q, role, userID)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
