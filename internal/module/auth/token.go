package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager issues and verifies access tokens.
type TokenManager interface {
	Issue(userID uint) (token string, expiresAt time.Time, err error)
	Verify(token string) (uint, error)
}

// TokenConfig configures the HS256 token manager.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type jwtManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns an HS256 JWT TokenManager. The user id is carried
// as the token subject.
func NewTokenManager(cfg TokenConfig) (TokenManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: token secret must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("auth: token ttl must be positive, got %s", cfg.TTL)
	}
	return &jwtManager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

func (m *jwtManager) Issue(userID uint) (string, time.Time, error) {
	if userID == 0 {
		return "", time.Time{}, errors.New("auth: cannot issue token for user 0")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *jwtManager) Verify(token string) (uint, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...); err != nil {
		return 0, err
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("auth: invalid token subject %q", claims.Subject)
	}
	return uint(id), nil
}
