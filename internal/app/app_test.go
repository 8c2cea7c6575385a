package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datawash/internal/config"
	"datawash/internal/infrastructure"
)

// setupTestEnvironment sets quiet logging and a spare port for tests
func setupTestEnvironment(t *testing.T) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Setenv("DATAWASH_SERVER_PORT", "18947")
	t.Setenv("DATAWASH_LOGGING_LEVEL", "error")
	t.Setenv("DATAWASH_LOGGING_OUTPUT", "stdout")
}

// createTestLogger creates a logger that discards output for testing
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// uploadRequest builds a multipart upload request with the given CSV body
func uploadRequest(t *testing.T, url, filename, contents string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestNewApplication(t *testing.T) {
	tests := []struct {
		name          string
		setupEnv      func(t *testing.T)
		wantErr       bool
		errorContains string
	}{
		{
			name:     "successful initialization",
			setupEnv: func(t *testing.T) {},
			wantErr:  false,
		},
		{
			name: "initialization with invalid config",
			setupEnv: func(t *testing.T) {
				t.Setenv("DATAWASH_SERVER_PORT", "-1")
			},
			wantErr:       true,
			errorContains: "config validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestEnvironment(t)
			tt.setupEnv(t)

			app, err := NewApplication()

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, app)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, app)
			defer app.Hub.Stop()

			assert.NotNil(t, app.Config)
			assert.NotNil(t, app.Logger)
			assert.NotNil(t, app.Router)
			assert.NotNil(t, app.Server)
			assert.NotNil(t, app.Hub)
			assert.NotNil(t, app.Store)
			assert.NotNil(t, app.DatasetService)
			assert.NotNil(t, app.HealthService)
			assert.NotNil(t, app.OTelProviders)
			assert.NotNil(t, app.Metrics)
			assert.NotNil(t, app.SystemMetrics)
		})
	}
}

func TestApplication_initializeServices(t *testing.T) {
	setupTestEnvironment(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	logger := createTestLogger()
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	require.NoError(t, err)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	require.NoError(t, app.initializeServices())
	defer app.Hub.Stop()

	assert.NotNil(t, app.Metrics)
	assert.NotNil(t, app.SystemMetrics)
	assert.NotNil(t, app.Hub)
	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.DatasetService)
	assert.NotNil(t, app.HealthService)
}

func TestApplication_setupRouter(t *testing.T) {
	setupTestEnvironment(t)

	app, err := NewApplication()
	require.NoError(t, err)
	defer app.Hub.Stop()

	testServer := httptest.NewServer(app.Router)
	defer testServer.Close()

	t.Run("health endpoints", func(t *testing.T) {
		for _, path := range []string{"/api/health", "/api/health/ready", "/api/health/live", "/api/version", "/api/stats"} {
			resp, err := http.Get(testServer.URL + path)
			require.NoError(t, err, path)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		}
	})

	t.Run("dataset listing", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/datasets")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "success", body["status"])
	})

	t.Run("prometheus scrape endpoint", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics api", func(t *testing.T) {
		for _, path := range []string{"/api/metrics", "/api/metrics/websocket"} {
			resp, err := http.Get(testServer.URL + path)
			require.NoError(t, err, path)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		}
	})

	t.Run("websocket endpoint requires upgrade", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/ws")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("request id and security headers", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("unknown route renders problem details", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/nonexistent")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "/errors/not-found", body["type"])
		assert.Contains(t, body, "trace_id")
	})
}

func TestApplication_datasetLifecycle(t *testing.T) {
	setupTestEnvironment(t)

	app, err := NewApplication()
	require.NoError(t, err)
	defer app.Hub.Stop()

	testServer := httptest.NewServer(app.Router)
	defer testServer.Close()

	csv := "Product Name,Price,Qty\nWidget,10.5,3\nGadget,,5\nWidget,10.5,3\n"

	// Upload
	req := uploadRequest(t, testServer.URL+"/api/datasets", "inventory.csv", csv)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var uploadBody struct {
		Status string `json:"status"`
		Data   struct {
			ID        int64  `json:"id"`
			Filename  string `json:"filename"`
			RawRows   int    `json:"raw_rows"`
			Processed bool   `json:"is_processed"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploadBody))
	assert.Equal(t, "success", uploadBody.Status)
	assert.Equal(t, "inventory.csv", uploadBody.Data.Filename)
	assert.Equal(t, 3, uploadBody.Data.RawRows)
	assert.False(t, uploadBody.Data.Processed)

	id := uploadBody.Data.ID
	base := fmt.Sprintf("%s/api/datasets/%d", testServer.URL, id)

	// Process
	opts := `{"standardize_column_names":true,"fix_data_types":true,"missing_value_strategy":"mean"}`
	resp, err = http.Post(base+"/process", "application/json", strings.NewReader(opts))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var processBody struct {
		Status string `json:"status"`
		Data   struct {
			Processed bool `json:"is_processed"`
			Stats     *struct {
				TotalRows         int `json:"total_rows"`
				DuplicatesRemoved int `json:"duplicates_removed"`
				NullValuesFixed   int `json:"null_values_fixed"`
			} `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&processBody))
	assert.True(t, processBody.Data.Processed)
	require.NotNil(t, processBody.Data.Stats)
	assert.Equal(t, 3, processBody.Data.Stats.TotalRows)
	assert.Equal(t, 1, processBody.Data.Stats.DuplicatesRemoved)
	assert.Equal(t, 1, processBody.Data.Stats.NullValuesFixed)

	// Preview
	resp, err = http.Get(base + "/preview?limit=10")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Stats
	resp, err = http.Get(base + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var statsBody struct {
		Data struct {
			DuplicatesRemoved int `json:"duplicates_removed"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&statsBody))
	assert.Equal(t, 1, statsBody.Data.DuplicatesRemoved)

	// Summary
	resp, err = http.Get(base + "/summary")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Export
	resp, err = http.Get(base + "/export?format=csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	// Report
	resp, err = http.Get(base + "/report")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Delete
	req, err = http.NewRequest(http.MethodDelete, base, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Gone
	resp, err = http.Get(base)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApplication_handleWebSocket(t *testing.T) {
	setupTestEnvironment(t)

	app, err := NewApplication()
	require.NoError(t, err)
	defer app.Hub.Stop()

	testServer := httptest.NewServer(http.HandlerFunc(app.handleWebSocket))
	defer testServer.Close()

	t.Run("successful WebSocket upgrade", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(testServer.URL, "http")

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		// The hub greets new clients with a connection message
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(msg), "connected")
	})

	t.Run("invalid WebSocket request", func(t *testing.T) {
		resp, err := http.Get(testServer.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "WEBSOCKET_UPGRADE_FAILED")
	})
}

func TestApplication_StartStop(t *testing.T) {
	setupTestEnvironment(t)

	app, err := NewApplication()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))

	// Wait for the listener to come up
	url := fmt.Sprintf("http://localhost:%d/api/health", app.Config.Server.Port)
	var resp *http.Response
	for i := 0; i < 20; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	require.NoError(t, err, "server did not come up")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, app.Stop(context.Background()))

	// Server should refuse connections after shutdown
	_, err = http.Get(url)
	assert.Error(t, err)
}

func TestApplication_corsConfig(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("DATAWASH_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")

	app, err := NewApplication()
	require.NoError(t, err)
	defer app.Hub.Stop()

	cfg := app.corsConfig()
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8080"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Contains(t, cfg.AllowedHeaders, "X-Request-ID")

	testServer := httptest.NewServer(app.Router)
	defer testServer.Close()

	req, err := http.NewRequest(http.MethodGet, testServer.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
