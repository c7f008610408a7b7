package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1insights/internal/config"
	"f1insights/internal/shared/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	return testutil.NewDataset().
		Driver(1, "Sebastian", "Vettel", "1987-07-03").
		Driver(2, "Fernando", "Alonso", "1981-07-29").
		Constructor(6, "Ferrari").
		Race(10, 2014, "Monaco Grand Prix", "2014-05-25").
		Race(11, 2015, "Italian Grand Prix", "2015-09-06").
		Result(10, 1, 6, 2, 1, 25).
		Result(10, 2, 6, 1, 2, 18).
		Result(11, 1, 6, 3, 3, 15).
		Result(11, 2, 6, 4, 1, 25).
		WriteDir(t)
}

func testConfig(dataDir string) *config.Config {
	cfg := config.Default()
	cfg.Paths.DataDir = dataDir
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

var testFrontend = fstest.MapFS{
	"index.html": &fstest.MapFile{Data: []byte("<!doctype html><title>F1 Insights</title>")},
}

func newTestApp(t *testing.T, load bool) (*Application, *httptest.Server) {
	t.Helper()
	a, err := New(testConfig(fixtureDir(t)), quietLogger(), testFrontend)
	require.NoError(t, err)

	if load {
		require.NoError(t, a.LoadDataset(context.Background()))
	}
	a.WebSocketHub.Start()

	server := httptest.NewServer(a.Router)
	t.Cleanup(func() {
		a.WebSocketHub.Stop()
		server.Close()
		a.OTelProviders.Shutdown(context.Background())
	})
	return a, server
}

func getJSON(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestApplication_Routes(t *testing.T) {
	_, server := newTestApp(t, true)

	tests := []struct {
		path   string
		status int
	}{
		{path: "/api/health", status: http.StatusOK},
		{path: "/api/health/ready", status: http.StatusOK},
		{path: "/api/health/live", status: http.StatusOK},
		{path: "/api/version", status: http.StatusOK},
		{path: "/api/menu", status: http.StatusOK},
		{path: "/api/datasets", status: http.StatusOK},
		{path: "/api/drivers", status: http.StatusOK},
		{path: "/api/analytics/head-to-head", status: http.StatusOK},
		{path: "/api/analytics/head-to-head/defaults", status: http.StatusOK},
		{path: "/api/analytics/fastest-pit-crew", status: http.StatusNotFound},
		{path: "/api/analytics/qualifying-vs-race?grid=99", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, _ := getJSON(t, server.URL+tt.path)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestApplication_NotReadyBeforeLoad(t *testing.T) {
	_, server := newTestApp(t, false)

	status, body := getJSON(t, server.URL+"/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "not_ready", body["status"])

	status, body = getJSON(t, server.URL+"/api/drivers")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "DATASET_NOT_LOADED", body["error_code"])
}

func TestApplication_LoadDatasetFailsOnMissingFile(t *testing.T) {
	dir := testutil.NewDataset().Without("pit_stops").WriteDir(t)
	a, err := New(testConfig(dir), quietLogger(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.OTelProviders.Shutdown(context.Background()) })

	assert.Error(t, a.LoadDataset(context.Background()))
	assert.False(t, a.Analytics.Ready())
}

func TestApplication_Frontend(t *testing.T) {
	_, server := newTestApp(t, true)

	for _, path := range []string{"/", "/drivers/head-to-head"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "F1 Insights")
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	}
}

func TestApplication_Metrics(t *testing.T) {
	_, server := newTestApp(t, true)

	status, _ := getJSON(t, server.URL+"/api/analytics/head-to-head")
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "analytics_runs")
	assert.Contains(t, string(body), "http_requests")
}

func TestApplication_WebSocket(t *testing.T) {
	_, server := newTestApp(t, true)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() map[string]interface{} {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg map[string]interface{}
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Equal(t, "connection", read()["type"])
	assert.Equal(t, "menu", read()["type"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "select", "action": "head-to-head"}))
	view := read()
	require.Equal(t, "view", view["type"], view)
	data := view["data"].(map[string]interface{})
	assert.Equal(t, "head-to-head", data["action"])
}

func TestApplication_CORSPreflight(t *testing.T) {
	_, server := newTestApp(t, true)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/menu", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:8080")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:8080", resp.Header.Get("Access-Control-Allow-Origin"))
}
