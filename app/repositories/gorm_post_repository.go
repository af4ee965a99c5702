package repositories

import (
	"context"
	"errors"
	"fmt"

	"blogapi/app/models"

	"gorm.io/gorm"
)

// GormPostRepository implements PostRepository on a relational database.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	ts := now()
	post.CreatedAt, post.UpdatedAt = ts, ts
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *GormPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return findPost(r.db.WithContext(ctx), id)
}

func (r *GormPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (r *GormPostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findPost(tx, post.ID)
		if err != nil {
			return err
		}

		existing.Title = post.Title
		existing.Author = post.Author
		existing.Body = post.Body
		existing.UpdatedAt = now()

		err = tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
			"title":      existing.Title,
			"author":     existing.Author,
			"body":       existing.Body,
			"updated_at": existing.UpdatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		*post = *existing
		return nil
	})
}

// Delete removes comments explicitly as well as relying on the FK cascade, so
// drivers running with foreign keys disabled behave the same.
func (r *GormPostRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of post %s: %w", id, err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Post{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete post: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *GormPostRepository) Count(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return int(count), nil
}

func findPost(db *gorm.DB, id string) (*models.Post, error) {
	var post models.Post
	if err := db.Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}
