package model

import (
	"encoding/json"
	"time"
)

// TimestampLayout is ISO-8601 in UTC with exactly three fractional digits.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarshalJSON writes createdAt and updatedAt in TimestampLayout so stored
// documents keep millisecond strings such as "2024-01-01T00:00:00.100Z".
func (p Post) MarshalJSON() ([]byte, error) {
	type plain Post
	return json.Marshal(struct {
		plain
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	}{
		plain:     plain(p),
		CreatedAt: p.CreatedAt.UTC().Format(TimestampLayout),
		UpdatedAt: p.UpdatedAt.UTC().Format(TimestampLayout),
	})
}

type CreatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Author  string `json:"author"`
}

// UpdatePostRequest carries optional replacements. A nil or empty field
// leaves the stored value untouched.
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Author  *string `json:"author"`
}

const (
	PostCreatedType = "POST_CREATED"
	PostUpdatedType = "POST_UPDATED"
	PostDeletedType = "POST_DELETED"
)

// PostEvent describes a successful mutation, broadcast to change feed subscribers.
type PostEvent struct {
	Type      string    `json:"type"`
	PostID    int64     `json:"post_id"`
	Data      Post      `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
