package models

import "time"

// Post represents a blog post. Its comments live in their own table and are
// removed together with the post.
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(25)"`
	Title     string    `json:"title" gorm:"type:varchar(255)" validate:"present"`
	Author    string    `json:"author" gorm:"type:varchar(255)" validate:"present"`
	Body      string    `json:"body" gorm:"type:text" validate:"present"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// Validate checks the presence rules and returns ValidationErrors on failure.
func (p *Post) Validate() error {
	return validateStruct(p)
}

// AssignID sets a generated id unless one is already present.
func (p *Post) AssignID(generate func() string) {
	if p.ID == "" {
		p.ID = generate()
	}
}

// PostParams holds the permitted, client-writable post fields. A nil field
// was not supplied and leaves the stored value alone.
type PostParams struct {
	Title  *string
	Author *string
	Body   *string
}

// Apply copies the supplied fields onto post.
func (pp PostParams) Apply(post *Post) {
	if pp.Title != nil {
		post.Title = *pp.Title
	}
	if pp.Author != nil {
		post.Author = *pp.Author
	}
	if pp.Body != nil {
		post.Body = *pp.Body
	}
}
