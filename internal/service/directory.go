package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/bank-portal/internal/domain"
)

// Directory reads and writes the user directory blob: every user with their
// nested accounts and transactions, stored under domain.DirectoryKey.
type Directory struct {
	gateway domain.Gateway
}

// NewDirectory creates a Directory on top of the given gateway.
func NewDirectory(gateway domain.Gateway) *Directory {
	return &Directory{gateway: gateway}
}

// Load returns all stored users. A missing or empty key is an empty directory.
func (d *Directory) Load(ctx context.Context) ([]domain.User, error) {
	raw, err := d.gateway.Get(ctx, domain.DirectoryKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read user directory: %w", domain.ErrPersistence, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var users []domain.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("%w: decode user directory: %w", domain.ErrPersistence, err)
	}
	return users, nil
}

// Save replaces the stored directory with users.
func (d *Directory) Save(ctx context.Context, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("%w: encode user directory: %w", domain.ErrPersistence, err)
	}
	if err := d.gateway.Set(ctx, domain.DirectoryKey, string(raw)); err != nil {
		return fmt.Errorf("%w: write user directory: %w", domain.ErrPersistence, err)
	}
	return nil
}

func indexByID(users []domain.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func indexByEmail(users []domain.User, email string) int {
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return i
		}
	}
	return -1
}
