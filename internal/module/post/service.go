package post

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/simp-lee/blogapi/internal/domain"
	"github.com/simp-lee/blogapi/internal/pkg"
)

const (
	maxTitleLength   = 200
	maxContentLength = 100000
)

// errAuthorNotLoaded marks a post whose author association is missing.
var errAuthorNotLoaded = errors.New("post author not loaded")

// postService implements domain.PostService.
type postService struct {
	repo domain.PostRepository
	now  func() time.Time
}

// NewPostService creates a new PostService with the given repository.
func NewPostService(repo domain.PostRepository) domain.PostService {
	return &postService{repo: repo, now: time.Now}
}

// CreatePost creates a post owned by userID. Posts are drafts unless
// in.Draft is explicitly false.
func (s *postService) CreatePost(ctx context.Context, userID uint, in domain.PostInput) (*domain.Post, error) {
	title, err := normalizeInput(&in)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:   title,
		Content: in.Content,
		UserID:  userID,
		Draft:   true,
	}
	if in.Draft != nil && !*in.Draft {
		s.markPublished(post)
	} else {
		post.PublishAt = utcPtr(in.PublishAt)
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost replaces the title and content of a post owned by userID.
// A nil in.Draft keeps the current publication state.
func (s *postService) UpdatePost(ctx context.Context, userID, postID uint, in domain.PostInput) (*domain.Post, error) {
	title, err := normalizeInput(&in)
	if err != nil {
		return nil, err
	}

	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	post.Title = title
	post.Content = in.Content
	switch {
	case in.Draft == nil:
		if post.Draft {
			post.PublishAt = utcPtr(in.PublishAt)
		}
	case *in.Draft:
		markDraft(post)
		post.PublishAt = utcPtr(in.PublishAt)
	default:
		if post.Draft {
			s.markPublished(post)
		}
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// PublishPost makes a draft public. Publishing an already published post
// is a no-op.
func (s *postService) PublishPost(ctx context.Context, userID, postID uint) (*domain.Post, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !post.Draft {
		return post, nil
	}

	s.markPublished(post)
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UnpublishPost returns a post to draft state.
func (s *postService) UnpublishPost(ctx context.Context, userID, postID uint) (*domain.Post, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if post.Draft {
		return post, nil
	}

	markDraft(post)
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post owned by userID.
func (s *postService) DeletePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, postID)
}

// GetPublishedPost returns a published post with rendered content. Drafts
// are reported as not found.
func (s *postService) GetPublishedPost(ctx context.Context, postID uint) (*domain.PostDetail, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Draft {
		return nil, domain.ErrNotFound
	}

	detail, err := toPostDetail(*post)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to render post", err)
	}
	return &detail, nil
}

// ListPublished lists published posts with excerpts.
func (s *postService) ListPublished(ctx context.Context, filter domain.FilterSpec, req domain.PageRequest) (*domain.PaginatedResponse[domain.PublicPost], error) {
	return listPosts(ctx, s.repo, filter.With(domain.BoolEquals("draft", false)), req, toPublicPost)
}

// ListPublishedWithAuthor lists published posts with full content and the
// author's name.
func (s *postService) ListPublishedWithAuthor(ctx context.Context, filter domain.FilterSpec, req domain.PageRequest) (*domain.PaginatedResponse[domain.AuthoredPost], error) {
	return listPosts(ctx, s.repo, filter.With(domain.BoolEquals("draft", false)), req, toAuthoredPost)
}

// ListOwn lists every post owned by userID, drafts included.
func (s *postService) ListOwn(ctx context.Context, userID uint, filter domain.FilterSpec, req domain.PageRequest) (*domain.PaginatedResponse[domain.PostView], error) {
	return listPosts(ctx, s.repo, filter.With(domain.Equals("user_id", userID)), req, func(p domain.Post) (domain.PostView, error) {
		return toPostView(p), nil
	})
}

// PublishDue publishes every scheduled draft that is due at now.
func (s *postService) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.PublishDue(ctx, now.UTC())
}

// listPosts runs the listing pipeline: fetch a page, then map it. A mapper
// failure fails the whole listing.
func listPosts[T any](ctx context.Context, repo domain.PostRepository, filter domain.FilterSpec, req domain.PageRequest, mapper func(domain.Post) (T, error)) (*domain.PaginatedResponse[T], error) {
	posts, total, p, err := repo.List(ctx, filter, req)
	if err != nil {
		return nil, err
	}

	resp, err := pkg.BuildPaginatedResponse(posts, mapper, total, p)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to build post listing", err)
	}
	return resp, nil
}

// ownedPost loads a post and checks that userID owns it.
func (s *postService) ownedPost(ctx context.Context, userID, postID uint) (*domain.Post, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, domain.NewAppError(domain.CodeForbidden, "you can only modify your own posts", nil)
	}
	return post, nil
}

func (s *postService) markPublished(post *domain.Post) {
	now := s.now().UTC()
	post.Draft = false
	post.PublishedAt = &now
	post.PublishAt = nil
}

func markDraft(post *domain.Post) {
	post.Draft = true
	post.PublishedAt = nil
}

// normalizeInput strips markup from the title and checks both fields.
// It returns the cleaned title.
func normalizeInput(in *domain.PostInput) (string, error) {
	title := pkg.SanitizeText(in.Title)
	if title == "" {
		return "", domain.NewAppError(domain.CodeValidation, "title is required", nil)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", domain.NewAppError(domain.CodeValidation, "title must be at most 200 characters", nil)
	}
	if strings.TrimSpace(in.Content) == "" {
		return "", domain.NewAppError(domain.CodeValidation, "content is required", nil)
	}
	if len(in.Content) > maxContentLength {
		return "", domain.NewAppError(domain.CodeValidation, "content must be at most 100000 bytes", nil)
	}
	return title, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
