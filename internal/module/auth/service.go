package auth

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/blogapi/internal/domain"
)

const (
	minNameLen     = 2
	maxNameLen     = 100
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLen = 72

	missingAccountSecret = "login attempt for an unknown email"
)

// Service is the account and token API. It also satisfies
// middleware.TokenVerifier.
type Service interface {
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Refresh(ctx context.Context, userID uint) (*TokenResponse, error)
	VerifyToken(ctx context.Context, token string) (uint, error)
}

type authService struct {
	tokens TokenManager
	users  domain.UserRepository
	cost   int

	missingOnce sync.Once
	missingHash []byte
}

// NewService creates the auth service.
func NewService(tokens TokenManager, users domain.UserRepository) Service {
	return &authService{tokens: tokens, users: users, cost: bcrypt.DefaultCost}
}

// Register creates an account. Emails are stored lower-cased so uniqueness
// and login lookups ignore case.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateRegisterInput(name, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a token. An unknown email and a
// wrong password fail identically, and both pay for one bcrypt comparison.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if domain.IsNotFound(err) {
		_ = bcrypt.CompareHashAndPassword(s.missingAccountHash(), []byte(password))
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	return s.issue(user.ID)
}

// Refresh issues a new token for an authenticated caller whose account still
// exists.
func (s *authService) Refresh(ctx context.Context, userID uint) (*TokenResponse, error) {
	user, err := unauthorizedIfMissing(s.users.GetByID(ctx, userID))
	if err != nil {
		return nil, err
	}
	return s.issue(user.ID)
}

// VerifyToken resolves a bearer token to a user id.
func (s *authService) VerifyToken(_ context.Context, token string) (uint, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return 0, domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", err)
	}
	return id, nil
}

func (s *authService) issue(userID uint) (*TokenResponse, error) {
	token, expiresAt, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}
	return &TokenResponse{Token: token, ExpiresAt: expiresAt.Unix()}, nil
}

// missingAccountHash is a hash at the service's cost that no password
// matches in practice. It is built on first use.
func (s *authService) missingAccountHash() []byte {
	s.missingOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(missingAccountSecret), s.cost)
		if err == nil {
			s.missingHash = hash
		}
	})
	return s.missingHash
}

func unauthorizedIfMissing(user *domain.User, err error) (*domain.User, error) {
	if domain.IsNotFound(err) {
		return nil, domain.ErrUnauthorized
	}
	return user, err
}

// validateRegisterInput expects name and email to be trimmed already.
func validateRegisterInput(name, email, password string) error {
	for _, check := range []func() string{
		func() string { return checkName(name) },
		func() string { return checkEmail(email) },
		func() string { return checkPassword(password) },
	} {
		if msg := check(); msg != "" {
			return domain.NewAppError(domain.CodeValidation, msg, nil)
		}
	}
	return nil
}

func checkName(name string) string {
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return "name is required"
	case n < minNameLen:
		return "name must be at least 2 characters"
	case n > maxNameLen:
		return "name must not exceed 100 characters"
	}
	return ""
}

// checkEmail accepts a bare address only, rejecting "Name <addr>" forms.
func checkEmail(email string) string {
	if email == "" {
		return "email is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "email must be a valid email address"
	}
	return ""
}

func checkPassword(password string) string {
	switch {
	case len(password) < minPasswordLen:
		return "password must be at least 8 characters"
	case len(password) > maxPasswordLen:
		return "password must not exceed 72 characters"
	}
	return ""
}
