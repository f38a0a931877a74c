package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by PostgresStore.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists services in the services table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps a pgx pool.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("catalog: db cannot be nil")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]Service, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, duration_minutes, price, is_active
		FROM services
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.DurationMinutes, &svc.Price, &svc.IsActive); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate services: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Service, error) {
	var svc Service
	err := s.db.QueryRow(ctx, `
		SELECT id, name, description, duration_minutes, price, is_active
		FROM services
		WHERE id = $1`, id).
		Scan(&svc.ID, &svc.Name, &svc.Description, &svc.DurationMinutes, &svc.Price, &svc.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get service: %w", err)
	}
	return &svc, nil
}

func (s *PostgresStore) ReplaceAll(ctx context.Context, services []Service) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM services`); err != nil {
		return fmt.Errorf("catalog: clear services: %w", err)
	}
	for i, svc := range services {
		_, err := tx.Exec(ctx, `
			INSERT INTO services (id, position, name, description, duration_minutes, price, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			svc.ID, i, svc.Name, svc.Description, svc.DurationMinutes, svc.Price, svc.IsActive,
		)
		if err != nil {
			return fmt.Errorf("catalog: insert service %q: %w", svc.Name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("catalog: commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, svc Service) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE services
		SET name = $2, description = $3, duration_minutes = $4, price = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1`,
		svc.ID, svc.Name, svc.Description, svc.DurationMinutes, svc.Price, svc.IsActive,
	)
	if err != nil {
		return fmt.Errorf("catalog: update service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
