package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"blogapi/internal/post/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePosts() []model.Post {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []model.Post{
		{ID: 3, Title: "Third", Content: "c3", Author: "Ana", CreatedAt: ts, UpdatedAt: ts},
		{ID: 1, Title: "First", Content: "c1", Author: "Anônimo", CreatedAt: ts, UpdatedAt: ts.Add(time.Hour)},
	}
}

func TestFileRepository_ReadCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "posts.json")
	repo := NewFileRepository(path, false)

	posts, err := repo.Read(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestFileRepository_WriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	repo := NewFileRepository(path, false)
	ctx := context.Background()

	require.NoError(t, repo.Write(ctx, samplePosts()))

	got, err := repo.Read(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// stored order is kept, not sorted by id
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, "Anônimo", got[1].Author)
	assert.True(t, samplePosts()[1].UpdatedAt.Equal(got[1].UpdatedAt))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileRepository_WritesIndentedCamelCaseDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	repo := NewFileRepository(path, false)

	require.NoError(t, repo.Write(context.Background(), samplePosts()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"id\": 3,")
	assert.Contains(t, string(data), `"createdAt": "2024-05-01T12:00:00.000Z"`)
	assert.Contains(t, string(data), `"updatedAt"`)
}

func TestFileRepository_ReadsDocumentWrittenByOtherTools(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	doc := `[
  {
    "id": 7,
    "title": "Olá",
    "content": "Mundo",
    "author": "Anônimo",
    "createdAt": "2024-01-02T03:04:05.678Z",
    "updatedAt": "2024-01-02T03:04:05.678Z"
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	posts, err := NewFileRepository(path, false).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(7), posts[0].ID)
	assert.Equal(t, "Olá", posts[0].Title)
	assert.Equal(t, 678*int(time.Millisecond), posts[0].CreatedAt.Nanosecond())
}

func TestFileRepository_MalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"`), 0o644))
	ctx := context.Background()

	t.Run("fails open", func(t *testing.T) {
		posts, err := NewFileRepository(path, false).Read(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("strict surfaces the error", func(t *testing.T) {
		posts, err := NewFileRepository(path, true).Read(ctx)
		assert.Error(t, err)
		assert.Nil(t, posts)
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"not":"an array"`, string(data), "reading must not rewrite a corrupt document")
}

func TestFileRepository_NullDocumentIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(`null`), 0o644))

	posts, err := NewFileRepository(path, true).Read(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestFileRepository_ReadIOError(t *testing.T) {
	// A directory at the file path makes ReadFile fail with something other than ErrNotExist.
	path := t.TempDir()

	posts, err := NewFileRepository(path, false).Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)

	_, err = NewFileRepository(path, true).Read(context.Background())
	assert.Error(t, err)
}

func TestFileRepository_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	repo := NewFileRepository(filepath.Join(blocker, "posts.json"), false)
	err := repo.Write(context.Background(), samplePosts())
	assert.Error(t, err)
}

func TestFileRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "posts.json"), false)
	_, err := repo.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Write(ctx, nil), context.Canceled)
}
