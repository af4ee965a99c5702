package repositories

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	"gorm.io/gorm"
)

// Store bundles the repositories of one storage backend.
type Store struct {
	Posts    PostRepository
	Comments CommentRepository

	closers []func() error
}

// NewBadgerStore builds a Store on an open badger database. Closing the store
// releases its sequences but leaves db open.
func NewBadgerStore(db *badger.DB) (*Store, error) {
	posts, err := NewBadgerPostRepository(db)
	if err != nil {
		return nil, err
	}
	comments, err := NewBadgerCommentRepository(db)
	if err != nil {
		posts.Close()
		return nil, err
	}
	return &Store{
		Posts:    posts,
		Comments: comments,
		closers:  []func() error{posts.Close, comments.Close},
	}, nil
}

// NewGormStore builds a Store on an open gorm connection.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Posts:    NewGormPostRepository(db),
		Comments: NewGormCommentRepository(db),
	}
}

// Close releases resources held by the repositories.
func (s *Store) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
