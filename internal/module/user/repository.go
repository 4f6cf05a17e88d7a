package user

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/blogapi/internal/domain"
	"github.com/simp-lee/blogapi/internal/pkg"
)

// allowedSortFields lists the columns a user listing may be ordered by.
var allowedSortFields = []string{"id", "name", "created_at"}

// userRepository implements domain.UserRepository using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository backed by the given GORM database.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// GetByID retrieves a user by its primary key.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, compared case-insensitively.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &user, nil
}

// List returns one page of users matching filter together with the total
// match count and the computed pagination window.
func (r *userRepository) List(ctx context.Context, filter domain.FilterSpec, req domain.PageRequest) ([]domain.User, int64, domain.PaginationResult, error) {
	users, total, p, err := pkg.FetchPage[domain.User](ctx, r.db, filter, req, allowedSortFields)
	if err != nil {
		return nil, 0, domain.PaginationResult{}, pkg.MapDBError(err)
	}
	return users, total, p, nil
}

// Update saves changes to an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}
