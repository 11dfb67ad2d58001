package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/msomdec/bank-portal/internal/domain"
	"github.com/msomdec/bank-portal/internal/ident"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minNameLength     = 2
	minPasswordLength = 6
)

// AuthService handles signup, login and logout on top of the user directory.
type AuthService struct {
	directory  *Directory
	sessions   *SessionManager
	bcryptCost int
	limiter    *TokenBucket
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithLoginLimiter throttles login attempts per email address.
func WithLoginLimiter(limiter *TokenBucket) AuthOption {
	return func(s *AuthService) { s.limiter = limiter }
}

// NewAuthService creates a new AuthService.
func NewAuthService(directory *Directory, sessions *SessionManager, bcryptCost int, opts ...AuthOption) *AuthService {
	s := &AuthService{
		directory:  directory,
		sessions:   sessions,
		bcryptCost: bcryptCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user after validating inputs and signs them in.
func (s *AuthService) Register(ctx context.Context, name, email, password, confirmPassword string) (domain.Profile, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if len([]rune(name)) < minNameLength {
		return domain.Profile{}, fmt.Errorf("%w: name must be at least %d characters", domain.ErrInvalidInput, minNameLength)
	}
	if !emailPattern.MatchString(email) {
		return domain.Profile{}, fmt.Errorf("%w: please enter a valid email address", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return domain.Profile{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if password != confirmPassword {
		return domain.Profile{}, fmt.Errorf("%w: passwords do not match", domain.ErrInvalidInput)
	}

	users, err := s.directory.Load(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	if indexByEmail(users, email) >= 0 {
		return domain.Profile{}, domain.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           ident.NewID(ident.PrefixUser),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
		Accounts:     []domain.Account{},
		Transactions: []domain.Transaction{},
	}
	if err := s.directory.Save(ctx, append(users, user)); err != nil {
		return domain.Profile{}, fmt.Errorf("create user: %w", err)
	}
	slog.Info("user registered", "user_id", user.ID)

	if err := s.sessions.SignIn(ctx, &user); err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

// Login verifies credentials and makes the user the current session.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Profile, error) {
	email = strings.TrimSpace(email)
	key := strings.ToLower(email)
	if s.limiter != nil && !s.limiter.Allow(key) {
		slog.Warn("login throttled", "email", email)
		return domain.Profile{}, domain.ErrTooManyAttempts
	}

	users, err := s.directory.Load(ctx)
	if err != nil {
		return domain.Profile{}, err
	}

	i := indexByEmail(users, email)
	if i < 0 {
		return domain.Profile{}, domain.ErrUnauthorized
	}
	user := &users[i]

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.Profile{}, domain.ErrUnauthorized
	}

	if err := s.sessions.SignIn(ctx, user); err != nil {
		return domain.Profile{}, err
	}
	if s.limiter != nil {
		s.limiter.Reset(key)
	}
	return user.Profile(), nil
}

// Logout ends the current session.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.SignOut(ctx)
}
