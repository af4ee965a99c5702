package repositories

import (
	"testing"
	"time"

	"blogapi/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexKeysSortByCreation(t *testing.T) {
	assert.Less(t, string(postIndexKey(9)), string(postIndexKey(10)))
	assert.Less(t, string(commentIndexKey("cpost", 99)), string(commentIndexKey("cpost", 100)))
	assert.Equal(t, "idx:comment:cpost:00000000000000000007", string(commentIndexKey("cpost", 7)))
	assert.True(t, len(commentIndexKey("cpost", 1)) > len(commentIndexPrefix("cpost")))
}

func TestMarshalEntity(t *testing.T) {
	t.Run("post record keeps seq next to flat fields", func(t *testing.T) {
		ts := time.Date(2025, 7, 31, 1, 6, 46, 0, time.UTC)
		rec := postRecord{
			Post: models.Post{ID: "cabc", Title: "Sample Post", Author: "John Doe", Body: "Body", CreatedAt: ts, UpdatedAt: ts},
			Seq:  42,
		}
		data, err := marshalEntity(rec)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"id": "cabc",
			"title": "Sample Post",
			"author": "John Doe",
			"body": "Body",
			"created_at": "2025-07-31T01:06:46Z",
			"updated_at": "2025-07-31T01:06:46Z",
			"seq": 42
		}`, string(data))

		var decoded postRecord
		require.NoError(t, unmarshalEntity(data, &decoded))
		assert.Equal(t, rec, decoded)
	})

	t.Run("invalid data", func(t *testing.T) {
		var rec commentRecord
		assert.Error(t, unmarshalEntity([]byte("{not json"), &rec))
	})
}
