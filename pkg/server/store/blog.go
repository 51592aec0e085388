package store

import (
	"errors"

	"github.com/vincentyu/portfolio-backend/pkg/model"
)

// ErrPostNotFound is returned when a blog post doesn't exist
var ErrPostNotFound = errors.New("blog post not found")

// ErrDuplicateSlug is returned when the slug of a post or project is taken
var ErrDuplicateSlug = errors.New("slug already exists")

// BlogPostUpdate lists the fields to change. Nil fields are left alone.
type BlogPostUpdate struct {
	Title   *string
	Summary *string
	Content *string
	Pillar  *string
	Date    *string
}

// Empty reports whether the update changes nothing.
func (u BlogPostUpdate) Empty() bool {
	return u.Title == nil && u.Summary == nil && u.Content == nil && u.Pillar == nil && u.Date == nil
}

// BlogStore abstracts blog post storage operations
type BlogStore interface {
	// ListPosts returns all posts ordered by date, newest first.
	ListPosts() ([]model.BlogPost, error)

	// FetchPost retrieves a post by slug.
	// Returns ErrPostNotFound if the post doesn't exist.
	FetchPost(slug string) (*model.BlogPost, error)

	// CreatePost inserts a post.
	// Returns ErrDuplicateSlug if the slug is taken.
	CreatePost(post *model.BlogPost) error

	// UpdatePost applies update to the post with slug.
	UpdatePost(slug string, update BlogPostUpdate) (*model.BlogPost, error)

	// DeletePost removes the post with slug.
	DeletePost(slug string) error
}
