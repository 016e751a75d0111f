package wire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"video-script-api/internal/config"
	"video-script-api/internal/infrastructure/persistence/memory"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "video-script-api", Version: "test"},
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory, DefaultListLimit: 10, MaxListLimit: 100},
	}
}

func TestProvideScriptRepositoryMemory(t *testing.T) {
	cfg := memoryConfig()
	repo, err := ProvideScriptRepository(cfg, nil, nil, ProvideListLimit(cfg))
	if err != nil {
		t.Fatalf("ProvideScriptRepository: %v", err)
	}
	if _, ok := repo.(*memory.ScriptRepository); !ok {
		t.Fatalf("repo type: want *memory.ScriptRepository got=%T", repo)
	}
}

func TestProvideScriptRepositoryRejectsUnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Driver = "sqlite"
	if _, err := ProvideScriptRepository(cfg, nil, nil, ProvideListLimit(cfg)); err == nil {
		t.Fatalf("want error for unknown driver")
	}

	cfg.Storage.Driver = config.StorageDriverPostgres
	if _, err := ProvideScriptRepository(cfg, nil, nil, ProvideListLimit(cfg)); err == nil {
		t.Fatalf("want error for postgres without client")
	}
}

func TestProvideRateLimiterWithoutRedis(t *testing.T) {
	if l := ProvideRateLimiter(nil); l != nil {
		t.Fatalf("want nil limiter got=%T", l)
	}
}

func TestInitializeAppInMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, cleanup, err := InitializeApp(context.Background(), memoryConfig())
	if err != nil {
		t.Fatalf("InitializeApp: %v", err)
	}
	defer cleanup()

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("ready status: want=%d got=%d body=%s", http.StatusOK, w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/video-scripts", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list status: want=%d got=%d", http.StatusOK, w.Code)
	}
}

func TestInitializeFunctionMissingCredential(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := memoryConfig()
	cfg.LLM = config.LLMConfig{
		DefaultProvider: "gemini",
		Providers: map[string]config.ProviderConfig{
			"gemini": {Kind: config.ProviderKindGemini, Model: "gemini-test"},
		},
	}
	r, cleanup, err := InitializeFunction(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitializeFunction: %v", err)
	}
	defer cleanup()

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-script", strings.NewReader(`{"topic":"volcanoes"}`)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusUnauthorized, w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/video-scripts", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("list status: want=%d got=%d", http.StatusNotFound, w.Code)
	}
}
