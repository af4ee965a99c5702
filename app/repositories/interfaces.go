package repositories

import (
	"context"
	"errors"
	"fmt"

	"blogapi/app/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrPostNotFound is returned when a comment references a missing post.
	// It matches ErrNotFound under errors.Is.
	ErrPostNotFound = fmt.Errorf("post %w", ErrNotFound)
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post and every comment that belongs to it.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create fails with ErrPostNotFound when comment.PostID does not resolve.
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) error
}
