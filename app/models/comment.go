package models

import "time"

// Comment represents a comment on a blog post.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(25)"`
	PostID    string    `json:"post_id" gorm:"type:varchar(25);not null;index:idx_comments_post_id" validate:"present"`
	Author    string    `json:"author" gorm:"type:varchar(255)" validate:"present"`
	Body      string    `json:"body" gorm:"type:text" validate:"present"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Post      *Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" validate:"-"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// Validate checks the presence rules and returns ValidationErrors on failure.
func (c *Comment) Validate() error {
	return validateStruct(c)
}

// AssignID sets a generated id unless one is already present.
func (c *Comment) AssignID(generate func() string) {
	if c.ID == "" {
		c.ID = generate()
	}
}

// CommentParams holds the permitted, client-writable comment fields.
type CommentParams struct {
	Author *string
	Body   *string
}

// Apply copies the supplied fields onto comment.
func (cp CommentParams) Apply(comment *Comment) {
	if cp.Author != nil {
		comment.Author = *cp.Author
	}
	if cp.Body != nil {
		comment.Body = *cp.Body
	}
}
