package services

import (
	"context"
	"errors"
	"testing"

	"blogapi/app/cuid"
	"blogapi/app/models"
	"blogapi/app/repositories"
	"blogapi/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService(t *testing.T) {
	ctx := context.Background()
	store, _, _ := mock.NewStore()
	postService := NewPostService(store.Posts)
	service := NewCommentService(store.Comments, store.Posts)

	post, err := postService.CreatePost(ctx, validPostParams())
	require.NoError(t, err)

	var created *models.Comment

	t.Run("create comment", func(t *testing.T) {
		comment, err := service.CreateComment(ctx, post.ID, models.CommentParams{
			Author: str("Jane Doe"),
			Body:   str("This is a comment."),
		})
		require.NoError(t, err)
		assert.True(t, cuid.IsCuid(comment.ID))
		assert.Equal(t, post.ID, comment.PostID)
		assert.Equal(t, "This is a comment.", comment.Body)
		assert.False(t, comment.CreatedAt.IsZero())
		created = comment
	})

	t.Run("get comment", func(t *testing.T) {
		comment, err := service.GetComment(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", comment.Author)
	})

	t.Run("update comment", func(t *testing.T) {
		comment, err := service.UpdateComment(ctx, created.ID, models.CommentParams{Body: str("Updated comment")})
		require.NoError(t, err)
		assert.Equal(t, "Updated comment", comment.Body)
		assert.Equal(t, "Jane Doe", comment.Author)
		assert.Equal(t, post.ID, comment.PostID)
	})

	t.Run("invalid update leaves stored comment unchanged", func(t *testing.T) {
		_, err := service.UpdateComment(ctx, created.ID, models.CommentParams{Body: str(""), Author: str(" ")})
		var verrs models.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 2)

		stored, err := service.GetComment(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Updated comment", stored.Body)
	})

	t.Run("list post comments", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			_, err := service.CreateComment(ctx, post.ID, models.CommentParams{Author: str("Commenter"), Body: str("Great post!")})
			require.NoError(t, err)
		}
		comments, err := service.ListPostComments(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 3)
		assert.Equal(t, created.ID, comments[0].ID)
	})

	t.Run("delete comment", func(t *testing.T) {
		require.NoError(t, service.DeleteComment(ctx, created.ID))
		_, err := service.GetComment(ctx, created.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("deleting the post removes its comments", func(t *testing.T) {
		comments, err := service.ListPostComments(ctx, post.ID)
		require.NoError(t, err)
		require.NotEmpty(t, comments)

		require.NoError(t, postService.DeletePost(ctx, post.ID))
		for _, comment := range comments {
			_, err := service.GetComment(ctx, comment.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		}
		_, err = service.ListPostComments(ctx, post.ID)
		assert.ErrorIs(t, err, repositories.ErrPostNotFound)
	})
}

func TestCommentServiceMissingPost(t *testing.T) {
	ctx := context.Background()
	store, _, comments := mock.NewStore()
	service := NewCommentService(store.Comments, store.Posts)

	tests := []struct {
		name   string
		params models.CommentParams
	}{
		{"valid fields", models.CommentParams{Author: str("Jane Doe"), Body: str("orphan")}},
		{"invalid fields still report the missing post", models.CommentParams{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateComment(ctx, "cmissing00000000000000000", tt.params)
			assert.ErrorIs(t, err, repositories.ErrPostNotFound)
			var verrs models.ValidationErrors
			assert.False(t, errors.As(err, &verrs))
		})
	}

	listed, err := comments.ListByPost(ctx, "cmissing00000000000000000")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestCommentServiceValidation(t *testing.T) {
	ctx := context.Background()
	store, _, _ := mock.NewStore()
	postService := NewPostService(store.Posts)
	service := NewCommentService(store.Comments, store.Posts)

	post, err := postService.CreatePost(ctx, validPostParams())
	require.NoError(t, err)

	tests := []struct {
		name       string
		params     models.CommentParams
		wantFields []string
	}{
		{"empty author", models.CommentParams{Author: str(""), Body: str("Valid content")}, []string{"author"}},
		{"empty body", models.CommentParams{Author: str("Valid Author"), Body: str("")}, []string{"body"}},
		{"both missing", models.CommentParams{}, []string{"author", "body"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateComment(ctx, post.ID, tt.params)
			var verrs models.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Len(t, verrs, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.Contains(t, verrs, field)
			}
		})
	}
}
