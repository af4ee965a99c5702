package services

import (
	"context"
	"errors"

	"blogapi/app/cuid"
	"blogapi/app/models"
	"blogapi/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	newID       func() string
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		newID:       cuid.New,
	}
}

// CreateComment stores a new comment under postID. A missing post is reported
// as repositories.ErrPostNotFound before any field validation runs.
func (s *CommentService) CreateComment(ctx context.Context, postID string, params models.CommentParams) (*models.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID}
	params.Apply(comment)
	if err := comment.Validate(); err != nil {
		return nil, err
	}

	comment.AssignID(s.newID)
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

// ListPostComments retrieves all comments for a post
func (s *CommentService) ListPostComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// UpdateComment merges the supplied fields into the stored comment and
// re-validates. The owning post never changes.
func (s *CommentService) UpdateComment(ctx context.Context, id string, params models.CommentParams) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	params.Apply(comment)
	if err := comment.Validate(); err != nil {
		return nil, err
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment deletes a comment
func (s *CommentService) DeleteComment(ctx context.Context, id string) error {
	return s.commentRepo.Delete(ctx, id)
}

func (s *CommentService) requirePost(ctx context.Context, postID string) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return repositories.ErrPostNotFound
		}
		return err
	}
	return nil
}
