package server

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ecu-stand/internal/core/config"
	"ecu-stand/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew verifies that New creates a Server with the correct configuration.
func TestNew(t *testing.T) {
	cfg := &config.AppConfig{
		ServerPort:  8080,
		CORSOrigins: "*",
	}

	logger.Init("development", "debug")
	srv := New(cfg)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.App)
	assert.Equal(t, cfg, srv.cfg)
}

// TestHealth verifies the liveness endpoint and the request id header.
func TestHealth(t *testing.T) {
	srv := New(&config.AppConfig{CORSOrigins: "*"})

	resp, err := srv.App.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Ray-ID"))
}

// TestCORS verifies preflight requests are answered for any origin by default.
func TestCORS(t *testing.T) {
	srv := New(&config.AppConfig{CORSOrigins: "*"})

	req := httptest.NewRequest("OPTIONS", "/api/order", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := srv.App.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

// TestBodyLimit verifies oversized bodies are refused with 413 on a real listener.
func TestBodyLimit(t *testing.T) {
	srv := New(&config.AppConfig{CORSOrigins: "*"})
	srv.App.Post("/echo", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.App.Listener(ln)
	defer srv.App.Shutdown()

	url := "http://" + ln.Addr().String() + "/echo"

	resp, err := http.Post(url, "application/octet-stream", bytes.NewReader(make([]byte, 1024)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(url, "application/octet-stream", bytes.NewReader(make([]byte, bodyLimit+1)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

// TestServeSPA verifies static assets are served and unknown paths fall back to index.html.
func TestServeSPA(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>ECU Stand</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	srv := New(&config.AppConfig{CORSOrigins: "*", StaticDir: dir})
	srv.ServeSPA()

	tests := []struct {
		path string
		want string
	}{
		{path: "/", want: "ECU Stand"},
		{path: "/assets/app.js", want: "console.log(1)"},
		{path: "/admin", want: "ECU Stand"},
		{path: "/some/deep/link", want: "ECU Stand"},
	}

	for _, tt := range tests {
		resp, err := srv.App.Test(httptest.NewRequest("GET", tt.path, nil))
		require.NoError(t, err, tt.path)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode, tt.path)
		assert.True(t, strings.Contains(string(body), tt.want), tt.path)
	}
}

// TestServer_Run_Error verifies that Run returns an error when binding fails (e.g., privileged port).
func TestServer_Run_Error(t *testing.T) {
	// Privileged port 1 should fail
	cfg := &config.AppConfig{
		ServerPort:  1,
		CORSOrigins: "*",
	}
	logger.Init("development", "error")

	srv := New(cfg)

	errCh := make(chan error)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(1 * time.Second):
		srv.App.Shutdown()
		t.Log("Server unexpectedly started or timed out on Error test")
	}
}
