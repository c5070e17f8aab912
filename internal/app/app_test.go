package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-api/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Env:     config.EnvLocal,
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		JWT: config.JWTConfig{
			Issuer:          "task-api-test",
			SigningKey:      "test-secret-key-at-least-32-bytes-long",
			AccessTokenTTL:  5 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
		},
	}
}

func setupTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()

	s := newStores(zerolog.Nop(), cfg, nil, nil)
	router, err := newRouter(zerolog.Nop(), cfg, s, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}
	return router
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewStores_Memory(t *testing.T) {
	s := newStores(zerolog.Nop(), testConfig(), nil, nil)

	if s.users == nil || s.tasks == nil || s.sessions == nil {
		t.Fatalf("newStores() = %+v, want every store set", s)
	}
	if len(s.checks) != 0 {
		t.Errorf("checks = %d, memory stores have nothing to ping", len(s.checks))
	}
}

func TestNewRouter_ShortSigningKey(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.SigningKey = "short"

	s := newStores(zerolog.Nop(), cfg, nil, nil)
	_, err := newRouter(zerolog.Nop(), cfg, s, prometheus.NewRegistry())
	if err == nil {
		t.Fatal("newRouter() should reject a short signing key")
	}
}

func TestNewRouter_Routes(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/task/", http.StatusUnauthorized},
		{http.MethodPost, "/auth/token", http.StatusBadRequest},
		{http.MethodGet, "/swagger/index.html", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(router, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestNewRouter_PanicAnsweredAsJSON(t *testing.T) {
	router := setupTestRouter(t, testConfig())
	router.GET("/panic", func(c *gin.Context) { panic("unexpected") })

	w := serve(router, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"error":"Internal Server Error"}` {
		t.Errorf("body = %s, want the generic error body", body)
	}
}

func TestNewRouter_Metrics(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	w := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	for _, want := range []string{
		`task_api_http_requests_total{method="GET",path="/",status="200"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output is missing %q", want)
		}
	}
}

func TestNewRouter_Swagger(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.SwaggerEnabled = true
	router := setupTestRouter(t, cfg)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "/task/{id}/") {
		t.Error("swagger document is missing the task routes")
	}
}

func TestNewRouter_CORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantHeader string
	}{
		{name: "allowed origin", origins: []string{"https://app.example"}, origin: "https://app.example", wantHeader: "https://app.example"},
		{name: "any origin", origins: []string{"*"}, origin: "https://other.example", wantHeader: "*"},
		{name: "disabled", origins: nil, origin: "https://app.example", wantHeader: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.HTTP.CORSAllowedOrigins = tt.origins
			router := setupTestRouter(t, cfg)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(router, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestApplicationLogWriter(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		env       string
		wantLevel zerolog.Level
		wantErr   bool
	}{
		{env: config.EnvLocal, wantLevel: zerolog.TraceLevel},
		{env: config.EnvDev, wantLevel: zerolog.DebugLevel},
		{env: config.EnvProd, wantLevel: zerolog.InfoLevel},
		{env: "staging", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			w, err := applicationLogWriter(tt.env)
			if tt.wantErr {
				if err == nil {
					t.Error("applicationLogWriter() should fail for an unknown env")
				}
				return
			}
			if err != nil || w == nil {
				t.Fatalf("applicationLogWriter() = %v, %v", w, err)
			}
			if got := zerolog.GlobalLevel(); got != tt.wantLevel {
				t.Errorf("global level = %v, want %v", got, tt.wantLevel)
			}
		})
	}
}
