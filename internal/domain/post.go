package domain

import (
	"context"
	"time"
)

// Post is a blog post owned by a user. Drafts are hidden from public listings.
type Post struct {
	BaseModel
	Title       string     `gorm:"size:200;not null;index" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	UserID      uint       `gorm:"not null;index" json:"userId"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Draft       bool       `gorm:"not null;index" json:"draft"`
	PublishedAt *time.Time `json:"publishedAt"`
	PublishAt   *time.Time `gorm:"index" json:"publishAt"`
}

// PostInput carries the writable fields of a post.
// A nil Draft leaves the draft flag unchanged on update and means "draft" on create.
type PostInput struct {
	Title     string
	Content   string
	Draft     *bool
	PublishAt *time.Time
}

// PostRepository defines the data access interface for posts.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id uint) (*Post, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter FilterSpec, req PageRequest) ([]Post, int64, PaginationResult, error)
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

// PostService defines the business logic interface for posts.
// Caller identity is always passed explicitly as userID.
type PostService interface {
	CreatePost(ctx context.Context, userID uint, in PostInput) (*Post, error)
	UpdatePost(ctx context.Context, userID, postID uint, in PostInput) (*Post, error)
	PublishPost(ctx context.Context, userID, postID uint) (*Post, error)
	UnpublishPost(ctx context.Context, userID, postID uint) (*Post, error)
	DeletePost(ctx context.Context, userID, postID uint) error
	GetPublishedPost(ctx context.Context, postID uint) (*PostDetail, error)
	ListPublished(ctx context.Context, filter FilterSpec, req PageRequest) (*PaginatedResponse[PublicPost], error)
	ListPublishedWithAuthor(ctx context.Context, filter FilterSpec, req PageRequest) (*PaginatedResponse[AuthoredPost], error)
	ListOwn(ctx context.Context, userID uint, filter FilterSpec, req PageRequest) (*PaginatedResponse[PostView], error)
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

// PostView is the owner's view of a post, drafts included.
type PostView struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	UserID      uint       `json:"userId"`
	Draft       bool       `json:"draft"`
	PublishedAt *time.Time `json:"publishedAt"`
	PublishAt   *time.Time `json:"publishAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PublicPost is the public-safe listing shape of a published post.
type PublicPost struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	UserID      uint       `json:"userId"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// AuthoredPost is a published post with its author's display name.
type AuthoredPost struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	UserID      uint       `json:"userId"`
	AuthorName  string     `json:"authorName"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// PostDetail is a single published post with rendered HTML content.
type PostDetail struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"contentHtml"`
	UserID      uint       `json:"userId"`
	AuthorName  string     `json:"authorName"`
	PublishedAt *time.Time `json:"publishedAt"`
}
