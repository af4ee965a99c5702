package services

import (
	"context"
	"fmt"

	"blogapi/app/cuid"
	"blogapi/app/models"
	"blogapi/app/repositories"
)

// PostService handles business logic for blog posts
type PostService struct {
	postRepo repositories.PostRepository
	newID    func() string
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		newID:    cuid.New,
	}
}

// CreatePost validates the supplied fields and stores a new post. Validation
// failures come back as models.ValidationErrors and nothing is written.
func (s *PostService) CreatePost(ctx context.Context, params models.PostParams) (*models.Post, error) {
	post := &models.Post{}
	params.Apply(post)

	if err := post.Validate(); err != nil {
		return nil, err
	}

	post.AssignID(s.newID)
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ListPosts retrieves every post in creation order
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// UpdatePost merges the supplied fields into the stored post and re-validates
// the result. An invalid merge leaves the stored post untouched.
func (s *PostService) UpdatePost(ctx context.Context, id string, params models.PostParams) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	params.Apply(post)
	if err := post.Validate(); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost deletes a post and all its comments
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	return s.postRepo.Delete(ctx, id)
}
