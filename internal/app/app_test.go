package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/genpersona/api/internal/config"
	"github.com/genpersona/api/internal/seeds"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		LLMProvider:       "openrouter",
		OpenRouterAPIKey:  "test-key",
		OpenRouterBaseURL: "http://127.0.0.1:0",
		PersonaModel:      "test-model",
		NameModel:         "test-model",
		MaxAttempts:       3,
		AttemptTimeout:    time.Second,
		BreakerFailures:   5,
		BreakerCooldown:   time.Second,
	}
}

func TestNewWithoutInfra(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseURL = "postgres://ignored"

	a, err := New(context.Background(), cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if a.Service == nil || a.Generator == nil || a.Breaker == nil {
		t.Fatal("core components not wired")
	}
	if a.DB != nil || a.Redis != nil || a.Bus != nil || a.History != nil {
		t.Error("infrastructure connected with infra=false")
	}
	if _, _, err := a.Service.SubmitRandom(context.Background()); !errors.Is(err, seeds.ErrUnavailable) {
		t.Errorf("SubmitRandom() without corpus error = %v, want ErrUnavailable", err)
	}
}

func TestNewLoadsFieldSpecAndSeeds(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "spec.yaml")
	seedPath := filepath.Join(dir, "seeds.json")
	spec := "version: 2\nrequired: [name]\n"
	if err := os.WriteFile(specPath, []byte(spec), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(seedPath, []byte(`["a potter"]`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	cfg.FieldSpecPath = specPath
	cfg.SeedPath = seedPath

	a, err := New(context.Background(), cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := a.Seeds.Len(); got != 1 {
		t.Errorf("Seeds.Len() = %d, want 1", got)
	}
}

func TestNewErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.OpenRouterAPIKey = ""
		if _, err := New(context.Background(), cfg, zap.NewNop(), false); err == nil {
			t.Error("New() error = nil")
		}
	})

	t.Run("bad field spec path", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.FieldSpecPath = filepath.Join(t.TempDir(), "missing.yaml")
		if _, err := New(context.Background(), cfg, zap.NewNop(), false); err == nil {
			t.Error("New() error = nil")
		}
	})
}
