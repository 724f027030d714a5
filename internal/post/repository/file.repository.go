package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"blogapi/internal/post/model"
	"blogapi/pkg/logger"
)

// FileRepository keeps the whole post collection in a single JSON file.
type FileRepository struct {
	Path string
	// Strict makes Read return malformed-document and I/O errors instead of
	// logging them and reporting an empty collection.
	Strict bool
}

func NewFileRepository(path string, strict bool) *FileRepository {
	return &FileRepository{Path: path, Strict: strict}
}

// Read loads the full collection. A missing file is created holding an empty array.
func (r *FileRepository) Read(ctx context.Context) ([]model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := r.Write(ctx, []model.Post{}); err != nil {
			return r.failOpen(fmt.Errorf("initialize %s: %w", r.Path, err))
		}
		return []model.Post{}, nil
	}
	if err != nil {
		return r.failOpen(fmt.Errorf("read %s: %w", r.Path, err))
	}

	posts, err := decodePosts(data)
	if err != nil {
		return r.failOpen(fmt.Errorf("decode %s: %w", r.Path, err))
	}
	return posts, nil
}

// Write replaces the file with the serialized collection. The data goes to a
// temporary file first and is renamed over the target.
func (r *FileRepository) Write(ctx context.Context, posts []model.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodePosts(posts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Sugar.Errorf("Failed to create data directory %s: %v", dir, err)
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.Path)+".*.tmp")
	if err != nil {
		logger.Sugar.Errorf("Failed to save posts to %s: %v", r.Path, err)
		return fmt.Errorf("save posts: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		logger.Sugar.Errorf("Failed to save posts to %s: %v", r.Path, err)
		return fmt.Errorf("save posts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		logger.Sugar.Errorf("Failed to save posts to %s: %v", r.Path, err)
		return fmt.Errorf("save posts: %w", err)
	}
	if err := os.Rename(tmpName, r.Path); err != nil {
		os.Remove(tmpName)
		logger.Sugar.Errorf("Failed to save posts to %s: %v", r.Path, err)
		return fmt.Errorf("save posts: %w", err)
	}
	return nil
}

func (r *FileRepository) failOpen(err error) ([]model.Post, error) {
	if r.Strict {
		logger.Sugar.Errorf("Failed to read posts: %v", err)
		return nil, err
	}
	logger.Sugar.Errorf("Failed to read posts, continuing with an empty collection: %v", err)
	return []model.Post{}, nil
}

func decodePosts(data []byte) ([]model.Post, error) {
	var posts []model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

func encodePosts(posts []model.Post) ([]byte, error) {
	if posts == nil {
		posts = []model.Post{}
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode posts: %w", err)
	}
	return data, nil
}
