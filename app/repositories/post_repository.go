package repositories

import (
	"context"
	"fmt"

	"blogapi/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerPostRepository creates a new BadgerPostRepository. Call Close to
// release the leased sequence range.
func NewBadgerPostRepository(db *badger.DB) (*BadgerPostRepository, error) {
	seq, err := db.GetSequence([]byte(PostSeqKey), seqBandwidth)
	if err != nil {
		return nil, fmt.Errorf("failed to lease post sequence: %w", err)
	}
	return &BadgerPostRepository{db: db, seq: seq}, nil
}

// Close releases the sequence lease.
func (r *BadgerPostRepository) Close() error {
	return r.seq.Release()
}

// Create stores a new post and stamps its timestamps
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	seq, err := r.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to get next post sequence: %w", err)
	}

	ts := now()
	rec := postRecord{Post: *post, Seq: seq}
	rec.CreatedAt, rec.UpdatedAt = ts, ts

	data, err := marshalEntity(rec)
	if err != nil {
		return err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(postKey(post.ID), data); err != nil {
			return err
		}
		if err := txn.Set(livePostKey(post.ID), nil); err != nil {
			return err
		}
		return txn.Set(postIndexKey(seq), []byte(post.ID))
	})
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	*post = rec.Post
	return nil
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var rec postRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec.Post, nil
}

// List retrieves every post in creation order
func (r *BadgerPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		ids, err := collectIDs(txn, []byte(PostIndexPrefix))
		if err != nil {
			return err
		}
		for _, id := range ids {
			var rec postRecord
			if err := getEntity(txn, postKey(id), &rec); err != nil {
				return fmt.Errorf("failed to load post %s: %w", id, err)
			}
			post := rec.Post
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update overwrites the writable fields of an existing post
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) error {
	var saved models.Post
	err := update(ctx, r.db, func(txn *badger.Txn) error {
		var rec postRecord
		if err := getEntity(txn, postKey(post.ID), &rec); err != nil {
			return err
		}

		rec.Title = post.Title
		rec.Author = post.Author
		rec.Body = post.Body
		rec.UpdatedAt = now()

		data, err := marshalEntity(rec)
		if err != nil {
			return err
		}
		saved = rec.Post
		return txn.Set(postKey(post.ID), data)
	})
	if err != nil {
		return err
	}

	*post = saved
	return nil
}

// Delete deletes a post by ID together with its comments. The post and its
// live marker go in one transaction; comment writes racing it read the marker
// and either commit first, and are swept below, or fail with ErrPostNotFound.
func (r *BadgerPostRepository) Delete(ctx context.Context, id string) error {
	err := update(ctx, r.db, func(txn *badger.Txn) error {
		var rec postRecord
		if err := getEntity(txn, postKey(id), &rec); err != nil {
			return err
		}
		if err := txn.Delete(livePostKey(id)); err != nil {
			return err
		}
		if err := txn.Delete(postIndexKey(rec.Seq)); err != nil {
			return err
		}
		return txn.Delete(postKey(id))
	})
	if err != nil {
		return err
	}

	if err := sweepComments(r.db, id); err != nil {
		return fmt.Errorf("failed to delete comments of post %s: %w", id, err)
	}
	return nil
}

// sweepComments removes every comment indexed under postID. Deletes go through
// a WriteBatch, which splits them across transactions as needed.
func sweepComments(db *badger.DB, postID string) error {
	var indexKeys [][]byte
	var commentIDs []string
	err := db.View(func(txn *badger.Txn) error {
		prefix := commentIndexPrefix(postID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to read index value: %w", err)
			}
			indexKeys = append(indexKeys, item.KeyCopy(nil))
			commentIDs = append(commentIDs, string(val))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := db.NewWriteBatch()
	defer wb.Cancel()
	for i, id := range commentIDs {
		if err := wb.Delete(commentKey(id)); err != nil {
			return err
		}
		if err := wb.Delete(indexKeys[i]); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Count returns the number of stored posts
func (r *BadgerPostRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(PostIndexPrefix)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
