package server

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memeforge/memeforge/internal/config"
	"github.com/memeforge/memeforge/internal/observability"
)

// isPermissionError reports sandbox refusals to open sockets.
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EACCES) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{"permission denied", "operation not permitted", "not permitted"} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func initMetricsOrSkip(t *testing.T) {
	t.Helper()
	if err := observability.InitMetrics("test", 0, "test"); err != nil {
		if isPermissionError(err) {
			t.Skipf("skipping metrics tests due to sandbox permissions: %v", err)
		}
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		if observability.PrometheusExporter != nil {
			_ = observability.PrometheusExporter.Stop()
			observability.PrometheusExporter = nil
		}
		observability.TelemetrySystem = nil
	})
}

// startLoopback serves srv on IPv4 loopback, skipping when sockets are blocked.
func startLoopback(t *testing.T, srv *Server) (*httptest.Server, *http.Client) {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if isPermissionError(err) {
			t.Skipf("skipping server setup: %v", err)
		}
		require.NoError(t, err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: srv.Handler()},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts, ts.Client()
}

func TestRenderMetricsReachPrometheus(t *testing.T) {
	initMetricsOrSkip(t)
	ts, client := startLoopback(t, newTestServer(t, config.ServerConfig{MaxUploadBytes: 1 << 20}))

	const workers = 4
	bodies := []string{`{"texts":["a","b"]}`, `{"texts":["only one"]}`}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			resp, err := client.Post(ts.URL+"/memes/left_right", "application/json", strings.NewReader(bodies[i%len(bodies)]))
			if err == nil {
				_ = resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()

	resp, err := client.Get(ts.URL + "/memes/turn_right/preview")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, readErr)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	content := string(body)
	assert.Contains(t, content, "meme_render_total")
	assert.Contains(t, content, "text_number_mismatch")
	assert.Contains(t, content, "http_requests_total")
}
