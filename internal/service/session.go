package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/bank-portal/internal/domain"
)

// SessionManager tracks the signed-in user. The public profile is kept in
// memory and mirrored to the gateway as a signed token so a later process can
// resume the session.
type SessionManager struct {
	gateway domain.Gateway
	secret  []byte
	ttl     time.Duration
	current *domain.Profile
}

type sessionClaims struct {
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	UserCreatedAt time.Time `json:"created_at"`
	jwt.RegisteredClaims
}

// NewSessionManager creates a SessionManager with no active session.
func NewSessionManager(gateway domain.Gateway, secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		gateway: gateway,
		secret:  []byte(secret),
		ttl:     ttl,
	}
}

// SignIn makes user the current session, replacing any previous one. Only the
// public profile is kept; the credential never leaves the directory.
func (m *SessionManager) SignIn(ctx context.Context, user *domain.User) error {
	profile := user.Profile()

	token, err := m.sign(profile)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	if err := m.gateway.Set(ctx, domain.SessionKey, token); err != nil {
		return fmt.Errorf("%w: write session: %w", domain.ErrPersistence, err)
	}

	m.current = &profile
	return nil
}

// CurrentUser returns the signed-in profile, or false when nobody is signed in.
func (m *SessionManager) CurrentUser() (domain.Profile, bool) {
	if m.current == nil {
		return domain.Profile{}, false
	}
	return *m.current, true
}

// SignOut clears the session in memory and in storage.
func (m *SessionManager) SignOut(ctx context.Context) error {
	m.current = nil
	if err := m.gateway.Set(ctx, domain.SessionKey, ""); err != nil {
		return fmt.Errorf("%w: clear session: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Resume restores the session saved by a previous SignIn. A missing, expired
// or tampered token leaves the manager signed out.
func (m *SessionManager) Resume(ctx context.Context) error {
	m.current = nil

	token, err := m.gateway.Get(ctx, domain.SessionKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%w: read session: %w", domain.ErrPersistence, err)
	}
	if token == "" {
		return nil
	}

	profile, err := m.parse(token)
	if err != nil {
		slog.Debug("discarding stored session", "error", err)
		return nil
	}
	m.current = &profile
	return nil
}

func (m *SessionManager) sign(p domain.Profile) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Name:          p.Name,
		Email:         p.Email,
		UserCreatedAt: p.CreatedAt,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *SessionManager) parse(tokenString string) (domain.Profile, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return domain.Profile{}, err
	}
	if !token.Valid || claims.Subject == "" {
		return domain.Profile{}, domain.ErrUnauthorized
	}
	return domain.Profile{
		ID:        claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		CreatedAt: claims.UserCreatedAt,
	}, nil
}
