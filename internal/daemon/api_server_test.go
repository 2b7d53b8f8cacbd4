package daemon

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tonielib/internal/config"
	"tonielib/internal/logging"
	"tonielib/internal/setup"
)

func newTestServer(t *testing.T, configPath, dataRoot string) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	d, err := New(Options{
		Config:     &cfg,
		ConfigPath: configPath,
		DataRoot:   dataRoot,
		Bind:       "127.0.0.1:0",
		Logger:     logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	server := httptest.NewServer(d.api.server.Handler)
	t.Cleanup(server.Close)
	return server
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func TestStatusReportsSetupRequiredWithoutConfig(t *testing.T) {
	server := newTestServer(t, filepath.Join(t.TempDir(), "config.toml"), t.TempDir())

	resp, err := http.Get(server.URL + "/api/setup/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d, want 200", resp.StatusCode)
	}

	var status setup.Status
	decodeBody(t, resp, &status)
	if !status.SetupRequired {
		t.Error("expected setup_required = true for missing config")
	}
	if status.Reason != "Configuration file not found" {
		t.Errorf("reason = %q", status.Reason)
	}
}

func TestStatusRejectsPost(t *testing.T) {
	server := newTestServer(t, filepath.Join(t.TempDir(), "config.toml"), t.TempDir())

	resp, err := http.Post(server.URL+"/api/setup/status", "application/json", nil)
	if err != nil {
		t.Fatalf("POST status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status code = %d, want 405", resp.StatusCode)
	}
}

func TestDetectReportsVolumeContents(t *testing.T) {
	dataRoot := t.TempDir()
	for _, dir := range []string{"config", "library"} {
		if err := os.MkdirAll(filepath.Join(dataRoot, dir), 0o755); err != nil {
			t.Fatalf("seed volume: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dataRoot, "library", "story.taf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed taf file: %v", err)
	}

	server := newTestServer(t, filepath.Join(t.TempDir(), "config.toml"), dataRoot)

	resp, err := http.Get(server.URL + "/api/setup/detect")
	if err != nil {
		t.Fatalf("GET detect: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d, want 200", resp.StatusCode)
	}

	var detection setup.Detection
	decodeBody(t, resp, &detection)
	if !detection.VolumeAvailable {
		t.Error("expected volume_available = true")
	}
	if detection.TAFFilesFound != 1 {
		t.Errorf("taf_files_found = %d, want 1", detection.TAFFilesFound)
	}
}

func TestTestConnectionReturnsProbeOutcome(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/toniesCustomJson":
			w.Write([]byte(`[]`))
		case "/api/tonieboxes":
			w.Write([]byte(`[{"id":"box-1","name":"Kitchen"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	server := newTestServer(t, filepath.Join(t.TempDir(), "config.toml"), t.TempDir())

	body, _ := json.Marshal(map[string]string{"url": upstream.URL})
	resp, err := http.Post(server.URL+"/api/setup/test", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d, want 200", resp.StatusCode)
	}

	var result setup.ProbeResult
	decodeBody(t, resp, &result)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if len(result.Boxes) != 1 || result.Boxes[0].Name != "Kitchen" {
		t.Errorf("boxes = %+v", result.Boxes)
	}
}

func TestTestConnectionFailureStillReturns200(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer upstream.Close()

	server := newTestServer(t, filepath.Join(t.TempDir(), "config.toml"), t.TempDir())

	body, _ := json.Marshal(map[string]string{"url": upstream.URL})
	resp, err := http.Post(server.URL+"/api/setup/test", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d, want 200", resp.StatusCode)
	}

	var result setup.ProbeResult
	decodeBody(t, resp, &result)
	if result.Success {
		t.Error("expected success = false for failing upstream")
	}
	if !strings.Contains(result.Error, "502") {
		t.Errorf("error = %q, want HTTP 502 mention", result.Error)
	}
}

func TestTestConnectionRejectsMalformedBody(t *testing.T) {
	server := newTestServer(t, filepath.Join(t.TempDir(), "config.toml"), t.TempDir())

	resp, err := http.Post(server.URL+"/api/setup/test", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status code = %d, want 400", resp.StatusCode)
	}
}

func TestSavePersistsConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	server := newTestServer(t, configPath, t.TempDir())

	body, _ := json.Marshal(map[string]any{
		"teddycloud_url":       "http://teddycloud.local",
		"custom_img_path":      "/data/library/own/pics",
		"custom_img_json_path": "/data/config/custom_img.json",
		"use_smb":              true,
		"default_language":     "EN-us",
	})
	resp, err := http.Post(server.URL+"/api/setup/save", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST save: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d, want 200", resp.StatusCode)
	}

	var reply struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeBody(t, resp, &reply)
	if !reply.Success {
		t.Error("expected success = true")
	}
	if !strings.Contains(reply.Message, "restart") {
		t.Errorf("message = %q, want restart hint", reply.Message)
	}

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if !exists {
		t.Fatal("expected saved config file to exist")
	}
	if cfg.TeddyCloud.URL != "http://teddycloud.local" {
		t.Errorf("url = %q", cfg.TeddyCloud.URL)
	}
	if cfg.Volumes.Enabled {
		t.Error("use_smb = true should disable volumes")
	}
	if cfg.App.DefaultLanguage != "en-us" {
		t.Errorf("default_language = %q, want en-us", cfg.App.DefaultLanguage)
	}
}

func TestSaveFailureReturns500(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	server := newTestServer(t, filepath.Join(dir, "config.toml"), t.TempDir())

	body, _ := json.Marshal(map[string]string{"teddycloud_url": "http://teddycloud.local"})
	resp, err := http.Post(server.URL+"/api/setup/save", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST save: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status code = %d, want 500", resp.StatusCode)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	server := newTestServer(t, filepath.Join(t.TempDir(), "config.toml"), t.TempDir())

	resp, err := http.Get(server.URL + "/api/setup/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header on responses")
	}
}
