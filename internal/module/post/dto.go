package post

import "time"

// CreatePostRequest represents the input for creating a post. Draft defaults
// to true when omitted.
type CreatePostRequest struct {
	Title     string     `json:"title" form:"title" binding:"required,max=200"`
	Content   string     `json:"content" form:"content" binding:"required,max=100000"`
	Draft     *bool      `json:"draft" form:"draft"`
	PublishAt *time.Time `json:"publishAt" form:"publishAt"`
}

// UpdatePostRequest represents the input for updating a post. Omitting
// draft leaves the publication state unchanged.
type UpdatePostRequest struct {
	Title     string     `json:"title" form:"title" binding:"required,max=200"`
	Content   string     `json:"content" form:"content" binding:"required,max=100000"`
	Draft     *bool      `json:"draft" form:"draft"`
	PublishAt *time.Time `json:"publishAt" form:"publishAt"`
}
