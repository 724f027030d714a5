package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blogapi/internal/post/model"
	"blogapi/pkg/logger"
)

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS post_documents (
	name TEXT PRIMARY KEY,
	body JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository stores the collection as one JSONB document row, so it
// keeps the same whole-document read and rewrite semantics as the file store.
type PostgresRepository struct {
	DB     *sql.DB
	Name   string
	Strict bool
}

func NewPostgresRepository(db *sql.DB, name string, strict bool) *PostgresRepository {
	return &PostgresRepository{DB: db, Name: name, Strict: strict}
}

// Init creates the documents table if it does not exist yet.
func (r *PostgresRepository) Init(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, createDocumentsTable); err != nil {
		logger.Sugar.Errorf("Failed to create post_documents table: %v", err)
		return err
	}
	return nil
}

func (r *PostgresRepository) Read(ctx context.Context) ([]model.Post, error) {
	var body []byte
	err := r.DB.QueryRowContext(ctx, "SELECT body FROM post_documents WHERE name = $1", r.Name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		_, err := r.DB.ExecContext(ctx,
			`INSERT INTO post_documents (name, body, updated_at) VALUES ($1, $2, NOW()) ON CONFLICT (name) DO NOTHING`,
			r.Name, "[]")
		if err != nil {
			return r.failOpen(fmt.Errorf("initialize document %s: %w", r.Name, err))
		}
		return []model.Post{}, nil
	}
	if err != nil {
		return r.failOpen(fmt.Errorf("read document %s: %w", r.Name, err))
	}

	posts, err := decodePosts(body)
	if err != nil {
		return r.failOpen(fmt.Errorf("decode document %s: %w", r.Name, err))
	}
	return posts, nil
}

func (r *PostgresRepository) Write(ctx context.Context, posts []model.Post) error {
	data, err := encodePosts(posts)
	if err != nil {
		return err
	}

	// lib/pq requires string for JSONB, not []byte
	_, err = r.DB.ExecContext(ctx, `INSERT INTO post_documents (name, body, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`, r.Name, string(data))
	if err != nil {
		logger.Sugar.Errorf("Failed to save document %s: %v", r.Name, err)
		return fmt.Errorf("save posts: %w", err)
	}
	return nil
}

func (r *PostgresRepository) failOpen(err error) ([]model.Post, error) {
	if r.Strict {
		logger.Sugar.Errorf("Failed to read posts: %v", err)
		return nil, err
	}
	logger.Sugar.Errorf("Failed to read posts, continuing with an empty collection: %v", err)
	return []model.Post{}, nil
}
