package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/bank-portal/internal/domain"
	"github.com/msomdec/bank-portal/internal/repository/memory"
)

var _ domain.Gateway = (*memory.Store)(nil)

func TestStore_GetMissing(t *testing.T) {
	s := memory.New()
	if _, err := s.Get(context.Background(), "absent"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SetGet(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v" {
		t.Fatalf("expected v, got %q", got)
	}
}

func TestStore_FailWrites(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	quota := errors.New("quota exceeded")

	if err := s.Set(ctx, "k", "old"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.FailWrites(quota)
	if err := s.Set(ctx, "k", "new"); !errors.Is(err, quota) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if got, _ := s.Get(ctx, "k"); got != "old" {
		t.Fatalf("expected old value to survive, got %q", got)
	}

	s.FailWrites(nil)
	if err := s.Set(ctx, "k", "new"); err != nil {
		t.Fatalf("Set after recovery: %v", err)
	}
}
