package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		db       Pinger
		wantCode int
		wantDB   string
	}{
		{"no store", nil, http.StatusOK, "disabled"},
		{"store up", pingFunc(func(context.Context) error { return nil }), http.StatusOK, "up"},
		{"store down", pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }), http.StatusServiceUnavailable, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler("sitegen-api", "1.0.0", tt.db).RegisterRoutes(r)

			for _, path := range []string{"/health", "/healthz"} {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				assert.Equal(t, tt.wantCode, w.Code)

				var resp HealthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "sitegen-api", resp.Service)
				assert.Equal(t, "1.0.0", resp.Version)
				assert.Equal(t, tt.wantDB, resp.DB)
			}
		})
	}
}
