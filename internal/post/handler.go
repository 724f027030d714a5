package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	handlers "blogapi/handler"
	"blogapi/internal/post/model"
	"blogapi/internal/post/service"
	"blogapi/pkg/logger"
)

// maxBodyBytes caps JSON request bodies at 100kb.
const maxBodyBytes = 100 << 10

type PostHandler struct {
	Service *service.PostService
}

func NewPostHandler(service *service.PostService) *PostHandler {
	return &PostHandler{Service: service}
}

func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Service.ListPosts(r.Context())
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to list posts: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "Error fetching posts", err)
		return
	}

	total := len(posts)
	handlers.WriteJSON(w, http.StatusOK, handlers.Envelope{Success: true, Total: &total, Data: posts})
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeNotFound(w)
		return
	}

	post, err := h.Service.GetPost(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to get post %d: %v", id, err)
		handlers.WriteError(w, http.StatusInternalServerError, "Error fetching post", err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.Envelope{Success: true, Data: post})
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	post, err := h.Service.CreatePost(r.Context(), req)
	if errors.Is(err, service.ErrInvalidRequest) {
		logger.Sugar.Debugf("Handler: Rejected post creation: %v", err)
		handlers.WriteError(w, http.StatusBadRequest, "Title and content are required", nil)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to create post: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "Error creating post", err)
		return
	}

	handlers.WriteJSON(w, http.StatusCreated, handlers.Envelope{
		Success: true,
		Message: "Post created successfully!",
		Data:    post,
	})
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req model.UpdatePostRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeNotFound(w)
		return
	}

	post, err := h.Service.UpdatePost(r.Context(), id, req)
	if errors.Is(err, service.ErrNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to update post %d: %v", id, err)
		handlers.WriteError(w, http.StatusInternalServerError, "Error updating post", err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.Envelope{
		Success: true,
		Message: "Post updated successfully!",
		Data:    post,
	})
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeNotFound(w)
		return
	}

	post, err := h.Service.DeletePost(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to delete post %d: %v", id, err)
		handlers.WriteError(w, http.StatusInternalServerError, "Error deleting post", err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.Envelope{
		Success: true,
		Message: "Post deleted successfully!",
		Data:    post,
	})
}

// parseID resolves an {id} path value the way a lenient integer parse does:
// leading whitespace is skipped, an optional sign and 0x prefix are honoured,
// and the longest run of digits wins, so "1.5" and "1abc" both resolve to 1.
// A value with no leading digits matches no post.
func parseID(raw string) (int64, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == 0 {
		return 0, false
	}

	id, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		id = -id
	}
	return id, true
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16:
		return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	}
	return false
}

var errTrailingData = errors.New("unexpected data after JSON body")

// decodeBody decodes a single JSON value into dst. An empty body leaves dst
// zeroed; anything after the first value is rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errTrailingData
	}
	return nil
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		handlers.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large", err)
		return
	}
	handlers.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
}

func writeNotFound(w http.ResponseWriter) {
	handlers.WriteError(w, http.StatusNotFound, "Post not found", nil)
}
