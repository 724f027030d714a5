package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"blogapi/internal/post/model"

	"github.com/go-playground/validator/v10"
)

//go:generate mockgen -source=post.service.go -destination=./post_store_mock.go -package=service
type PostStore interface {
	Read(ctx context.Context) ([]model.Post, error)
	Write(ctx context.Context, posts []model.Post) error
}

// EventPublisher receives an event after every successful mutation.
type EventPublisher interface {
	Publish(event model.PostEvent)
}

type PostService struct {
	store         PostStore
	events        EventPublisher
	validate      *validator.Validate
	defaultAuthor string
	now           func() time.Time

	// mu serializes read-modify-write cycles on the collection.
	mu sync.RWMutex
}

// NewPostService builds the service. events may be nil.
func NewPostService(store PostStore, events EventPublisher, defaultAuthor string) *PostService {
	return &PostService{
		store:         store,
		events:        events,
		validate:      validator.New(),
		defaultAuthor: defaultAuthor,
		now:           time.Now,
	}
}

func (s *PostService) ListPosts(ctx context.Context) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id int64) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts, err := s.store.Read(ctx)
	if err != nil {
		return model.Post{}, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return model.Post{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return posts[i], nil
}

func (s *PostService) CreatePost(ctx context.Context, req model.CreatePostRequest) (model.Post, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.store.Read(ctx)
	if err != nil {
		return model.Post{}, err
	}

	author := req.Author
	if author == "" {
		author = s.defaultAuthor
	}
	ts := s.timestamp()
	post := model.Post{
		ID:        nextID(posts),
		Title:     req.Title,
		Content:   req.Content,
		Author:    author,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	if err := s.store.Write(ctx, append(posts, post)); err != nil {
		return model.Post{}, err
	}

	s.publish(model.PostCreatedType, post)
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id int64, req model.UpdatePostRequest) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.store.Read(ctx)
	if err != nil {
		return model.Post{}, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return model.Post{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}

	post := &posts[i]
	if provided(req.Title) {
		post.Title = *req.Title
	}
	if provided(req.Content) {
		post.Content = *req.Content
	}
	if provided(req.Author) {
		post.Author = *req.Author
	}
	post.UpdatedAt = s.timestamp()

	if err := s.store.Write(ctx, posts); err != nil {
		return model.Post{}, err
	}

	s.publish(model.PostUpdatedType, *post)
	return *post, nil
}

func (s *PostService) DeletePost(ctx context.Context, id int64) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.store.Read(ctx)
	if err != nil {
		return model.Post{}, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return model.Post{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}

	deleted := posts[i]
	remaining := make([]model.Post, 0, len(posts)-1)
	remaining = append(remaining, posts[:i]...)
	remaining = append(remaining, posts[i+1:]...)

	if err := s.store.Write(ctx, remaining); err != nil {
		return model.Post{}, err
	}

	s.publish(model.PostDeletedType, deleted)
	return deleted, nil
}

// timestamp matches the millisecond precision of ISO-8601 strings already on disk.
func (s *PostService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *PostService) publish(eventType string, post model.Post) {
	if s.events == nil {
		return
	}
	s.events.Publish(model.PostEvent{
		Type:      eventType,
		PostID:    post.ID,
		Data:      post,
		Timestamp: s.timestamp(),
	})
}

func indexOf(posts []model.Post, id int64) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID returns max(id)+1, or 1 for an empty collection.
func nextID(posts []model.Post) int64 {
	var maxID int64
	for _, p := range posts {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

func provided(v *string) bool {
	return v != nil && *v != ""
}
