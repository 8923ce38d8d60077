package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/config"
)

func TestRouter_HealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, nil)

	w, _ := env.doJSON(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w, _ = env.doJSON(t, http.MethodGet, "/api/v1/job/get", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `jobportal_http_requests_total{method="GET",route="/api/v1/job/get",status="200"}`)
	assert.NotContains(t, w.Body.String(), `route="/health"`)
}

func TestRouter_UnknownAPIRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	w, body := env.doJSON(t, http.MethodGet, "/api/v1/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, body.success())
}

func TestRouter_SPAFallback(t *testing.T) {
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>app</html>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets", "app.js"), []byte("console.log(1)"), 0o600))

	router := NewRouter(config.APIConfig{FrontendDist: dist}, nil)

	cases := map[string]string{
		"/":              "<html>app</html>",
		"/jobs/42":       "<html>app</html>",
		"/assets/app.js": "console.log(1)",
	}
	for path, want := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, want, w.Body.String(), path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/jobs", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
