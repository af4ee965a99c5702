package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"blogapi/app/models"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"

	// Creation-order indexes. Values are the record id.
	PostIndexPrefix    = "idx:post:"
	CommentIndexPrefix = "idx:comment:"

	// Present while a post exists. Comment writes read it so that a
	// concurrent post delete makes them conflict.
	LivePostPrefix = "live:post:"

	// Sequence keys feeding the indexes
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"

	seqBandwidth = 100

	maxTxnRetries = 50
)

// postRecord is the stored form of a post.
type postRecord struct {
	models.Post
	Seq uint64 `json:"seq"`
}

// commentRecord is the stored form of a comment.
type commentRecord struct {
	models.Comment
	Seq uint64 `json:"seq"`
}

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

func commentKey(id string) []byte {
	return []byte(CommentKeyPrefix + id)
}

// Sequence numbers are zero padded so lexical key order is creation order.
func postIndexKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", PostIndexPrefix, seq))
}

func livePostKey(id string) []byte {
	return []byte(LivePostPrefix + id)
}

func commentIndexPrefix(postID string) []byte {
	return []byte(CommentIndexPrefix + postID + ":")
}

func commentIndexKey(postID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", CommentIndexPrefix, postID, seq))
}

// now is the timestamp source for writes.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// getEntity loads and decodes the value stored at key.
func getEntity(txn *badger.Txn, key []byte, v interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, v)
	})
}

// postIsLive reports whether the post still exists, recording the read so a
// concurrent delete of the post conflicts with txn.
func postIsLive(txn *badger.Txn, postID string) (bool, error) {
	_, err := txn.Get(livePostKey(postID))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check post %s: %w", postID, err)
	}
	return true, nil
}

// update runs fn in a read-write transaction, retrying on conflicts so
// racing writes to one record resolve as last write wins.
func update(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		err := db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) || attempt == maxTxnRetries {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		time.Sleep(time.Duration(rand.IntN(attempt+1)+1) * 100 * time.Microsecond)
	}
}

// collectIDs returns the values stored under prefix, in key order.
func collectIDs(txn *badger.Txn, prefix []byte) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read index value: %w", err)
		}
		ids = append(ids, string(val))
	}
	return ids, nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
