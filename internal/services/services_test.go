package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager-api/internal/storage/sqlite"
	"github.com/adanyl0v/task-manager-api/internal/validation"
)

var testHashParams = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(context.Background(), zerolog.Nop(), filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestAuthService(t *testing.T, store *sqlite.Store, ttl time.Duration) AuthService {
	t.Helper()

	return NewAuthService(
		zerolog.Nop(),
		store,
		validation.New(),
		TokenConfig{
			Issuer:     "task-manager-api-test",
			SigningKey: []byte("test-signing-key"),
			TTL:        ttl,
		},
		testHashParams,
	)
}

func newTestTaskService(t *testing.T, store *sqlite.Store) TaskService {
	t.Helper()

	return NewTaskService(zerolog.Nop(), store, validation.New())
}

func strPtr(s string) *string { return &s }
