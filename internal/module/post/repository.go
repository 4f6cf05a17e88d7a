package post

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/blogapi/internal/domain"
	"github.com/simp-lee/blogapi/internal/pkg"
)

// allowedSortFields lists the columns a post listing may be ordered by.
var allowedSortFields = []string{"id", "title", "created_at", "updated_at", "published_at"}

// postRepository implements domain.PostRepository using GORM.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository backed by the given GORM database.
func NewPostRepository(db *gorm.DB) domain.PostRepository {
	return &postRepository{db: db}
}

func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("User")
}

// Create inserts a new post.
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// GetByID retrieves a post and its author by primary key.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.WithContext(ctx).Scopes(withAuthor).First(&post, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &post, nil
}

// Update saves every column of an existing post. The author association is
// never written.
func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	if err := r.db.WithContext(ctx).Omit("User").Save(post).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// Delete removes a post by ID.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Post{}, id)
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns one page of posts matching filter, authors preloaded.
func (r *postRepository) List(ctx context.Context, filter domain.FilterSpec, req domain.PageRequest) ([]domain.Post, int64, domain.PaginationResult, error) {
	posts, total, p, err := pkg.FetchPage[domain.Post](ctx, r.db, filter, req, allowedSortFields, withAuthor)
	if err != nil {
		return nil, 0, domain.PaginationResult{}, pkg.MapDBError(err)
	}
	return posts, total, p, nil
}

// PublishDue publishes every draft whose scheduled time is at or before now
// and returns how many posts changed. The publication time recorded is the
// scheduled time.
func (r *postRepository) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	var published int64
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&domain.Post{}).
			Where("draft = ? AND publish_at IS NOT NULL AND publish_at <= ?", true, now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		result := tx.Model(&domain.Post{}).
			Where("id IN ? AND draft = ?", ids, true).
			Updates(map[string]any{
				"draft":        false,
				"published_at": gorm.Expr("publish_at"),
				"publish_at":   nil,
			})
		published = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, pkg.MapDBError(err)
	}
	return published, nil
}
