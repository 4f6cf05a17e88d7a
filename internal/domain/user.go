package domain

import (
	"context"
	"time"
)

// User represents a registered author.
type User struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
}

// UserRepository defines the data access interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter FilterSpec, req PageRequest) ([]User, int64, PaginationResult, error)
	Update(ctx context.Context, user *User) error
}

// UserService defines the business logic interface for users.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*User, error)
	ListUsers(ctx context.Context, filter FilterSpec, req PageRequest) (*PaginatedResponse[UserSummary], error)
	UpdateProfile(ctx context.Context, userID uint, name string) (*User, error)
}

// UserSummary is the public representation of a user.
type UserSummary struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
