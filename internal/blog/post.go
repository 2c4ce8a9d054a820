// Package blog defines the domain types and input validation rules.
package blog

import "time"

// Post is a blog entry. Content is already-rendered HTML; Markdown
// conversion happens before the record reaches this service.
type Post struct {
	ID           int64     `json:"id" db:"id"`
	Subject      string    `json:"subject" db:"subject"`
	Content      string    `json:"content" db:"content"`
	IsDraft      bool      `json:"is_draft" db:"is_draft"`
	Created      time.Time `json:"created" db:"created"`
	LastModified time.Time `json:"last_modified" db:"last_modified"`
}
