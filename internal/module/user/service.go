package user

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/blogapi/internal/domain"
	"github.com/simp-lee/blogapi/internal/pkg"
)

// userService implements domain.UserService.
type userService struct {
	repo domain.UserRepository
}

// NewUserService creates a new UserService with the given repository.
func NewUserService(repo domain.UserRepository) domain.UserService {
	return &userService{repo: repo}
}

// GetUser retrieves a user by ID.
func (s *userService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns one page of the public user directory.
func (s *userService) ListUsers(ctx context.Context, filter domain.FilterSpec, req domain.PageRequest) (*domain.PaginatedResponse[domain.UserSummary], error) {
	users, total, p, err := s.repo.List(ctx, filter, req)
	if err != nil {
		return nil, err
	}
	return pkg.BuildPaginatedResponse(users, toSummary, total, p)
}

// UpdateProfile changes the display name of the user identified by userID.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func toSummary(u domain.User) (domain.UserSummary, error) {
	return domain.UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}, nil
}

// validateName checks the display name length in runes.
func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 {
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	}
	if n < 2 {
		return domain.NewAppError(domain.CodeValidation, "name must be at least 2 characters", nil)
	}
	if n > 100 {
		return domain.NewAppError(domain.CodeValidation, "name must be at most 100 characters", nil)
	}
	return nil
}
