package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alexrp02/pokemon-team-overlay/internal/hub"
	"github.com/Alexrp02/pokemon-team-overlay/internal/platform/metrics"
	"github.com/Alexrp02/pokemon-team-overlay/internal/roster"
)

func newTestServer(t *testing.T) (*httptest.Server, *hub.Hub[roster.Set], string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sprites := t.TempDir()
	h := hub.New(ctx, roster.Set{"team": roster.Parse("pikachu\n")})
	srv := httptest.NewServer(SetupRoutes(Deps{
		Hub:        h,
		Log:        zap.NewNop(),
		Metrics:    metrics.New(),
		SpritesDir: sprites,
	}))
	t.Cleanup(srv.Close)
	return srv, h, sprites
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRoutes_Healthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, _ := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoutes_IndexAndCORS(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRoutes_Sprites(t *testing.T) {
	srv, _, sprites := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(sprites, "pikachu.png"), []byte("not really a png"), 0o644))

	resp, body := get(t, srv.URL+"/sprites/pikachu.png")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "not really a png", body)

	resp, _ = get(t, srv.URL+"/sprites/missingno.png")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRoutes_WebsocketAndMetrics(t *testing.T) {
	srv, h, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer c.CloseNow()

	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pokemon"`)

	require.NoError(t, h.Publish(roster.Set{"team": roster.Parse("mew\n")}))
	_, data, err = c.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mew"`)

	_, body := get(t, srv.URL+"/metrics")
	assert.Contains(t, body, "overlay_hub_subscribers 1")
	assert.Contains(t, body, "overlay_hub_version 1")
	assert.Contains(t, body, "overlay_ws_sessions_active 1")
}
