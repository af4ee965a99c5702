package repositories

import (
	"context"
	"errors"
	"fmt"

	"blogapi/app/models"

	"gorm.io/gorm"
)

// GormCommentRepository implements CommentRepository on a relational database.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findPost(tx, comment.PostID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		ts := now()
		comment.CreatedAt, comment.UpdatedAt = ts, ts
		comment.Post = nil
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return nil
	})
}

func (r *GormCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return findComment(r.db.WithContext(ctx), id)
}

func (r *GormCommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (r *GormCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findComment(tx, comment.ID)
		if err != nil {
			return err
		}

		existing.Author = comment.Author
		existing.Body = comment.Body
		existing.UpdatedAt = now()

		err = tx.Model(&models.Comment{}).Where("id = ?", comment.ID).Updates(map[string]interface{}{
			"author":     existing.Author,
			"body":       existing.Body,
			"updated_at": existing.UpdatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update comment: %w", err)
		}

		*comment = *existing
		return nil
	})
}

func (r *GormCommentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func findComment(db *gorm.DB, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := db.Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}
