package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/bank-portal/internal/domain"
	"github.com/msomdec/bank-portal/internal/repository/memory"
	"github.com/msomdec/bank-portal/internal/repository/sqlite"
	"github.com/msomdec/bank-portal/internal/service"
)

const testSessionSecret = "test-secret-key-for-unit-tests-0123456789"

type testEnv struct {
	gateway  domain.Gateway
	dir      *service.Directory
	sessions *service.SessionManager
	auth     *service.AuthService
	banking  *service.BankingService
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	t := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newEnv(t *testing.T, gateway domain.Gateway) *testEnv {
	t.Helper()
	dir := service.NewDirectory(gateway)
	sessions := service.NewSessionManager(gateway, testSessionSecret, time.Hour)
	return &testEnv{
		gateway:  gateway,
		dir:      dir,
		sessions: sessions,
		// Use cost 4 for fast tests.
		auth:    service.NewAuthService(dir, sessions, 4),
		banking: service.NewBankingService(dir, sessions, service.WithClock(steppingClock())),
	}
}

func newMemoryEnv(t *testing.T) (*testEnv, *memory.Store) {
	t.Helper()
	store := memory.New()
	return newEnv(t, store), store
}

func newSQLiteGateway(t *testing.T) domain.Gateway {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.Gateway()
}

// signUp registers a user and leaves them signed in.
func (e *testEnv) signUp(t *testing.T, email string) domain.Profile {
	t.Helper()
	p, err := e.auth.Register(context.Background(), "Test User", email, "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return p
}
