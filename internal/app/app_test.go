package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager-api/internal/config"
)

func TestNewApplicationLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	logger, err := newApplicationLogger(zerolog.New(&buf), config.EnvProd, &buf)
	if err != nil {
		t.Fatalf("prod logger: %v", err)
	}
	logger.Debug().Msg("hidden")
	logger.Info().Msg("visible")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "visible") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	if _, err := newApplicationLogger(zerolog.Nop(), "staging", &buf); err == nil {
		t.Fatal("expected unknown env error")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Env:      config.EnvLocal,
		HTTP:     config.HTTPConfig{CORSAllowOrigins: []string{"*"}},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite},
		SQLite:   config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "app.db")},
		Auth: config.AuthConfig{
			TokenIssuer:     "test",
			TokenSigningKey: "secret",
			RateLimitRPS:    1,
			RateLimitBurst:  1,
		},
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "mysql"

	if _, err := OpenStore(context.Background(), zerolog.Nop(), cfg); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func TestRouter(t *testing.T) {
	cfg := testConfig(t)
	store, err := OpenStore(context.Background(), zerolog.Nop(), cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { CloseStore(zerolog.Nop(), store) })

	router := NewRouter(zerolog.Nop(), cfg, store, &argon2id.Params{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("allow origin = %q", got)
		}
	})

	t.Run("login rate limited", func(t *testing.T) {
		send := func() int {
			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
			req.RemoteAddr = "10.0.0.1:5000"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w.Code
		}

		if code := send(); code != http.StatusUnprocessableEntity {
			t.Fatalf("first login: status %d", code)
		}
		if code := send(); code != http.StatusTooManyRequests {
			t.Fatalf("second login: status %d, want 429", code)
		}
	})
}
