package api

import (
	"time"

	"github.com/prakhar1989/blag/internal/blog"
)

type PostDTO struct {
	ID           int64     `json:"id"`
	Subject      string    `json:"subject"`
	Content      string    `json:"content"`
	IsDraft      bool      `json:"is_draft"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}

func toPostDTO(p blog.Post) PostDTO {
	return PostDTO{
		ID:           p.ID,
		Subject:      p.Subject,
		Content:      p.Content,
		IsDraft:      p.IsDraft,
		Created:      p.Created,
		LastModified: p.LastModified,
	}
}

func toPostDTOs(posts []blog.Post) []PostDTO {
	dtos := make([]PostDTO, 0, len(posts))
	for _, p := range posts {
		dtos = append(dtos, toPostDTO(p))
	}
	return dtos
}

// ListingResponse carries the posts plus the staleness age of the served
// data, so clients can disclose cache freshness.
type ListingResponse struct {
	Posts      []PostDTO `json:"posts"`
	AgeSeconds int64     `json:"age_seconds"`
}

type PostResponse struct {
	Post       PostDTO `json:"post"`
	AgeSeconds int64   `json:"age_seconds"`
}

type PostInput struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
	IsDraft bool   `json:"is_draft"`
}

type SignupInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Verify   string `json:"verify"`
	Email    string `json:"email"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type LoginResponse struct {
	OK   bool     `json:"ok"`
	User *UserDTO `json:"user,omitempty"`
	// Error is the reusable indicator form-rendering clients show next to
	// the login form; the response status stays 200.
	Error string `json:"error,omitempty"`
}

// ValidationResponse echoes the submitted fields alongside per-field
// messages so the caller can re-render the form.
type ValidationResponse struct {
	Errors  map[string]string `json:"errors"`
	Subject string            `json:"subject,omitempty"`
	Content string            `json:"content,omitempty"`
}

type FlushResponse struct {
	Flushed bool `json:"flushed"`
}

type DeleteResponse struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
