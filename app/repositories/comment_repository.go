package repositories

import (
	"context"
	"errors"
	"fmt"

	"blogapi/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) (*BadgerCommentRepository, error) {
	seq, err := db.GetSequence([]byte(CommentSeqKey), seqBandwidth)
	if err != nil {
		return nil, fmt.Errorf("failed to lease comment sequence: %w", err)
	}
	return &BadgerCommentRepository{db: db, seq: seq}, nil
}

// Close releases the sequence lease.
func (r *BadgerCommentRepository) Close() error {
	return r.seq.Release()
}

// Create stores a new comment after checking its post exists. The check reads
// the post's live marker, so a post delete committing first turns this into
// ErrPostNotFound on retry, and a delete committing later sweeps the comment.
func (r *BadgerCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	seq, err := r.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to get next comment sequence: %w", err)
	}

	ts := now()
	rec := commentRecord{Comment: *comment, Seq: seq}
	rec.Post = nil
	rec.CreatedAt, rec.UpdatedAt = ts, ts

	data, err := marshalEntity(rec)
	if err != nil {
		return err
	}

	err = update(ctx, r.db, func(txn *badger.Txn) error {
		live, err := postIsLive(txn, comment.PostID)
		if err != nil {
			return err
		}
		if !live {
			return ErrPostNotFound
		}

		if err := txn.Set(commentKey(comment.ID), data); err != nil {
			return err
		}
		return txn.Set(commentIndexKey(comment.PostID, seq), []byte(comment.ID))
	})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return err
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	*comment = rec.Comment
	return nil
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var rec commentRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getLiveComment(txn, id, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec.Comment, nil
}

// ListByPost retrieves all comments for a post in creation order
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		if live, err := postIsLive(txn, postID); err != nil || !live {
			return err
		}
		ids, err := collectIDs(txn, commentIndexPrefix(postID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			var rec commentRecord
			if err := getEntity(txn, commentKey(id), &rec); err != nil {
				return fmt.Errorf("failed to load comment %s: %w", id, err)
			}
			comment := rec.Comment
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update overwrites the writable fields of an existing comment
func (r *BadgerCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	var saved models.Comment
	err := update(ctx, r.db, func(txn *badger.Txn) error {
		var rec commentRecord
		if err := getLiveComment(txn, comment.ID, &rec); err != nil {
			return err
		}

		rec.Author = comment.Author
		rec.Body = comment.Body
		rec.UpdatedAt = now()

		data, err := marshalEntity(rec)
		if err != nil {
			return err
		}
		saved = rec.Comment
		return txn.Set(commentKey(comment.ID), data)
	})
	if err != nil {
		return err
	}

	*comment = saved
	return nil
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(ctx context.Context, id string) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		var rec commentRecord
		if err := getLiveComment(txn, id, &rec); err != nil {
			return err
		}
		if err := txn.Delete(commentIndexKey(rec.PostID, rec.Seq)); err != nil {
			return err
		}
		return txn.Delete(commentKey(id))
	})
}

// getLiveComment loads a comment whose post still exists. Comments left behind
// by an interrupted post delete read as ErrNotFound.
func getLiveComment(txn *badger.Txn, id string, rec *commentRecord) error {
	if err := getEntity(txn, commentKey(id), rec); err != nil {
		return err
	}
	live, err := postIsLive(txn, rec.PostID)
	if err != nil {
		return err
	}
	if !live {
		return ErrNotFound
	}
	return nil
}
