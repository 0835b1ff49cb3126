package entity

import "time"

// Post is an authored entry. UserID is fixed at creation.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Details   string    `json:"details"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostDraft is a trimmed submission produced by the input validator.
type PostDraft struct {
	Title   string
	Details string
}

// Owner carries the display fields joined onto a post.
type Owner struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role Role   `json:"role"`
}

type PostWithOwner struct {
	Post
	Owner Owner `json:"owner"`
}
