// Package mock provides an in-memory Store for service and controller tests.
package mock

import (
	"context"
	"sync"
	"time"

	"blogapi/app/models"
	"blogapi/app/repositories"
)

// memory is the shared state behind a mock Store. Records are copied on the
// way in and out so callers cannot mutate stored values.
type memory struct {
	mutex        sync.RWMutex
	posts        map[string]models.Post
	postOrder    []string
	comments     map[string]models.Comment
	commentOrder []string

	// Err, when set, is returned by every call.
	Err error
}

// PostRepository is the post half of the in-memory store.
type PostRepository struct{ *memory }

// CommentRepository is the comment half of the in-memory store.
type CommentRepository struct{ *memory }

// NewStore returns a Store backed by maps, plus its repositories for direct
// access in tests.
func NewStore() (*repositories.Store, *PostRepository, *CommentRepository) {
	m := &memory{
		posts:    make(map[string]models.Post),
		comments: make(map[string]models.Comment),
	}
	posts := &PostRepository{m}
	comments := &CommentRepository{m}
	return &repositories.Store{Posts: posts, Comments: comments}, posts, comments
}

// Fail makes every subsequent call return err. Pass nil to recover.
func (m *memory) Fail(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Err = err
}

func stamp() time.Time {
	return time.Now().UTC()
}

// PostRepository implementation
func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	ts := stamp()
	post.CreatedAt, post.UpdatedAt = ts, ts
	m.posts[post.ID] = *post
	m.postOrder = append(m.postOrder, post.ID)
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &post, nil
}

func (m *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	posts := []*models.Post{}
	for _, id := range m.postOrder {
		if post, exists := m.posts[id]; exists {
			posts = append(posts, &post)
		}
	}
	return posts, nil
}

func (m *PostRepository) Update(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	existing, exists := m.posts[post.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	existing.Title = post.Title
	existing.Author = post.Author
	existing.Body = post.Body
	existing.UpdatedAt = stamp()
	m.posts[post.ID] = existing
	*post = existing
	return nil
}

func (m *PostRepository) Delete(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	for commentID, comment := range m.comments {
		if comment.PostID == id {
			delete(m.comments, commentID)
		}
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) Count(ctx context.Context) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.posts), nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[comment.PostID]; !exists {
		return repositories.ErrPostNotFound
	}
	ts := stamp()
	comment.CreatedAt, comment.UpdatedAt = ts, ts
	comment.Post = nil
	m.comments[comment.ID] = *comment
	m.commentOrder = append(m.commentOrder, comment.ID)
	return nil
}

func (m *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &comment, nil
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comments := []*models.Comment{}
	for _, id := range m.commentOrder {
		if comment, exists := m.comments[id]; exists && comment.PostID == postID {
			comments = append(comments, &comment)
		}
	}
	return comments, nil
}

func (m *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	existing, exists := m.comments[comment.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	existing.Author = comment.Author
	existing.Body = comment.Body
	existing.UpdatedAt = stamp()
	m.comments[comment.ID] = existing
	*comment = existing
	return nil
}

func (m *CommentRepository) Delete(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}
