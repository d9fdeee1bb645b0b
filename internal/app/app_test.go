package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"shortlink-service/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(backend string) *config.Config {
	cfg := config.Default()
	cfg.Database.Path = "file::memory:"
	cfg.Store.Backend = backend
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.AdminPassword = "admin-pass"
	cfg.RateLimit.Enabled = false
	cfg.App.BaseURL = "http://sho.rt"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func request(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestApp_EndToEnd(t *testing.T) {
	for _, backend := range []string{"sql", "memory"} {
		t.Run(backend, func(t *testing.T) {
			a := newTestApp(t, testConfig(backend))
			router := a.Router()

			w := request(router, http.MethodPost, "/api/shorten", `{"url":"https://example.com/x","custom_alias":"hello"}`, "")
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"short_url":"http://sho.rt/hello"`)

			w = request(router, http.MethodGet, "/hello", "", "")
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "https://example.com/x", w.Header().Get("Location"))

			w = request(router, http.MethodPost, "/auth/login", `{"username":"admin","password":"admin-pass"}`, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var login struct {
				Token string `json:"token"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

			w = request(router, http.MethodGet, "/api/summary", "", login.Token)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"total_clicks":1`)

			w = request(router, http.MethodGet, "/metrics", "", "")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "shortlink_resolve_total")
		})
	}
}

func TestApp_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := testConfig("redis")
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = port
	a := newTestApp(t, cfg)
	router := a.Router()

	w := request(router, http.MethodPost, "/api/shorten", `{"url":"https://example.com/r"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, mr.Exists("shortlink:"+created.Code))

	w = request(router, http.MethodGet, "/"+created.Code, "", "")
	assert.Equal(t, http.StatusFound, w.Code)

	// redis 后端不支持分页与汇总
	w = request(router, http.MethodPost, "/auth/login", `{"username":"admin","password":"admin-pass"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	w = request(router, http.MethodGet, "/api/summary", "", login.Token)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestApp_WithoutSecretDisablesAdmin(t *testing.T) {
	cfg := testConfig("memory")
	cfg.Auth.Secret = ""
	a := newTestApp(t, cfg)
	assert.Nil(t, a.Tokens)

	router := a.Router()
	w := request(router, http.MethodPost, "/auth/login", `{"username":"admin","password":"admin-pass"}`, "")
	assert.NotEqual(t, http.StatusOK, w.Code)
	w = request(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApp_InvalidBackend(t *testing.T) {
	_, err := New(testConfig("cassandra"), zap.NewNop())
	assert.Error(t, err)

	cfg := testConfig("redis")
	cfg.Redis.Host = ""
	_, err = New(cfg, zap.NewNop())
	assert.Error(t, err)
}
