package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentValidation(t *testing.T) {
	tests := []struct {
		name       string
		comment    *Comment
		wantFields []string
	}{
		{
			name:    "valid comment",
			comment: &Comment{PostID: "cpost00000000000000000000", Author: "Commenter", Body: "Great post!"},
		},
		{
			name:       "missing body",
			comment:    &Comment{PostID: "cpost00000000000000000000", Author: "Commenter"},
			wantFields: []string{"body"},
		},
		{
			name:       "missing author",
			comment:    &Comment{PostID: "cpost00000000000000000000", Body: "Great post!"},
			wantFields: []string{"author"},
		},
		{
			name:       "missing author and body",
			comment:    &Comment{PostID: "cpost00000000000000000000"},
			wantFields: []string{"author", "body"},
		},
		{
			name:       "missing post",
			comment:    &Comment{Author: "Commenter", Body: "Great post!"},
			wantFields: []string{"post_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.comment.Validate()
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Len(t, verrs, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.Contains(t, verrs, field)
			}
		})
	}
}

func TestCommentAssignID(t *testing.T) {
	comment := &Comment{}
	comment.AssignID(func() string { return "cfirst0000000000000000000" })
	comment.AssignID(func() string { return "csecond000000000000000000" })
	assert.Equal(t, "cfirst0000000000000000000", comment.ID)
}

func TestCommentParamsApply(t *testing.T) {
	body := "Updated comment"
	comment := &Comment{Author: "Jane Doe", Body: "This is a comment."}

	CommentParams{Body: &body}.Apply(comment)

	assert.Equal(t, "Updated comment", comment.Body)
	assert.Equal(t, "Jane Doe", comment.Author)
}
