package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/config"
)

func testConfig(t *testing.T, edgeoneURL string) *config.Config {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("GENERATION_PROVIDER", "static")
	t.Setenv("DEPLOY_TARGET", "edgeone")
	t.Setenv("DEPLOY_EDGEONE_BASE_URL", edgeoneURL)
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func edgeoneServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/get_base_url" {
			_ = json.NewEncoder(w).Encode(map[string]string{"baseUrl": srv.URL + "/upload"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://pages.example/site"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestBuild_EndToEnd(t *testing.T) {
	SetGinMode("test")
	cfg := testConfig(t, edgeoneServer(t).URL)

	app, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	w, body := call(t, app.Router, http.MethodPost, "/api/generate", `{"prompt":"A portfolio for a photographer"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	projectID := body["projectId"].(string)
	assert.Contains(t, body["generatedHtml"], "A portfolio for a photographer")

	w, body = call(t, app.Router, http.MethodPost, "/deploy", `{"projectId":"`+projectID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://pages.example/site", body["deploymentUrl"])

	w, body = call(t, app.Router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", body["db"])

	w, _ = call(t, app.Router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sitegen_http_requests_total")
}

func TestBuild_RedisEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", "redis://"+mr.Addr())
	cfg := testConfig(t, edgeoneServer(t).URL)

	app, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, app.Close())
}

func TestBuild_BadRedis(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1")
	cfg := testConfig(t, "http://127.0.0.1:1")

	_, err := Build(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "redis ping")
}

func TestProviders(t *testing.T) {
	_, err := NewGenerator(&config.GenerationConfig{Provider: "nope"}, zap.NewNop())
	assert.Error(t, err)

	gen, err := NewGenerator(&config.GenerationConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "openai", gen.Name())

	gen, err = NewGenerator(&config.GenerationConfig{Provider: "ollama", BaseURL: "http://localhost:11434/v1", Model: "llama3"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "ollama", gen.Name())

	_, err = NewPublisher(context.Background(), &config.DeployConfig{Target: "ftp"})
	assert.Error(t, err)

	tpl, err := NewTemplates(&config.GenerationConfig{})
	require.NoError(t, err)
	assert.NotNil(t, tpl)
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"https://app.example"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://app.example"}, cfg.AllowOrigins)
}
