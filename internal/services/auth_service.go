// Package services – AuthService
//
// This file implements registration and login for the web API. Passwords are
// hashed with bcrypt; successful logins are answered with an HS256 JWT
// carrying the user id. Accounts may be identified by email or phone; the
// login error never reveals which of the two checks failed.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/repo"
)

// AuthService handles account registration, credential checks, and JWT
// issuance/verification.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Secret signs issued tokens (HS256).
	Secret []byte
	// TokenTTL is the issued-token lifetime.
	TokenTTL time.Duration
}

// NewAuthService constructs an AuthService. A zero ttl falls back to 24h.
func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{DB: db, Secret: []byte(secret), TokenTTL: ttl}
}

// isEmail reports whether the identifier looks like an email address rather
// than a phone number. The original form surface accepts either.
func isEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}

// findByIdentifier resolves an account by email or phone.
func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if isEmail(identifier) {
		return repo.GetUserByEmail(ctx, s.DB, identifier)
	}
	return repo.GetUserByPhone(ctx, s.DB, identifier)
}

// Register creates an account for the given identifier (email or phone) with
// a bcrypt-hashed password. A taken identifier yields ErrUserExists.
func (s *AuthService) Register(ctx context.Context, identifier, name, password string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)

	if _, err := s.findByIdentifier(ctx, identifier); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{Name: name, PasswordHash: string(hash)}
	if isEmail(identifier) {
		u.Email = &identifier
	} else {
		u.Phone = &identifier
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and returns a signed JWT on success. Both a
// missing account and a wrong password produce ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	u, err := s.findByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if u.PasswordHash == "" {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// issueToken signs an HS256 JWT with the user id as subject.
func (s *AuthService) issueToken(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// VerifyToken parses and validates a token string and returns the user id it
// was issued for. Malformed, forged, or expired tokens yield ErrInvalidToken.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
