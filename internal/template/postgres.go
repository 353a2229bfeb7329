package template

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store directly on a PostgreSQL table.
// The table has the same layout as the PostgREST one and is created on open.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore connects using a postgres:// DSN
func NewPostgresStore(ctx context.Context, dsn, table string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable("ping postgres", err)
	}

	s := &PostgresStore{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
	}

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
		id uuid PRIMARY KEY,
		title text NOT NULL,
		content text NOT NULL,
		image text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL
	)`)
	if err != nil {
		pool.Close()
		return nil, unavailable("create table", err)
	}

	return s, nil
}

// List returns all rows ordered by creation time
func (s *PostgresStore) List(ctx context.Context) ([]*Template, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, title, content, image, created_at FROM `+s.table+` ORDER BY created_at, id`)
	if err != nil {
		return nil, unavailable("list templates", err)
	}
	defer rows.Close()

	templates := make([]*Template, 0)
	for rows.Next() {
		var tmpl Template
		if err := rows.Scan(&tmpl.ID, &tmpl.Title, &tmpl.Content, &tmpl.Image, &tmpl.CreatedAt); err != nil {
			return nil, unavailable("scan template", err)
		}
		templates = append(templates, &tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list templates", err)
	}

	return templates, nil
}

// Create inserts a row
func (s *PostgresStore) Create(ctx context.Context, f Fields) (*Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	tmpl := &Template{
		ID: uuid.NewString(),
		// timestamptz stores microseconds
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	tmpl.apply(f)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.table+` (id, title, content, image, created_at) VALUES ($1, $2, $3, $4, $5)`,
		tmpl.ID, tmpl.Title, tmpl.Content, tmpl.Image, tmpl.CreatedAt)
	if err != nil {
		return nil, unavailable("create template", err)
	}

	return tmpl, nil
}

// UpdateByID replaces the three fields in a single UPDATE ... RETURNING
func (s *PostgresStore) UpdateByID(ctx context.Context, id string, f Fields) (*Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}

	var tmpl Template
	err := s.pool.QueryRow(ctx,
		`UPDATE `+s.table+` SET title = $2, content = $3, image = $4 WHERE id = $1
		RETURNING id::text, title, content, image, created_at`,
		id, f.Title, f.Content, f.Image,
	).Scan(&tmpl.ID, &tmpl.Title, &tmpl.Content, &tmpl.Image, &tmpl.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("update template", err)
	}

	return &tmpl, nil
}

// Close closes the pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
