package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"tonielib/internal/logging"
	"tonielib/internal/setup"
)

// DefaultBind is the setup API listen address when none is configured.
const DefaultBind = "127.0.0.1:8480"

type apiServer struct {
	bind     string
	logger   *slog.Logger
	daemon   *Daemon
	dataRoot string

	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind string, d *Daemon, dataRoot string, logger *slog.Logger) *apiServer {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		bind = DefaultBind
	}
	if dataRoot == "" {
		dataRoot = setup.DefaultDataRoot
	}

	srv := &apiServer{
		bind:     bind,
		logger:   logger,
		daemon:   d,
		dataRoot: dataRoot,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/setup/status", srv.handleStatus)
	mux.HandleFunc("/api/setup/detect", srv.handleDetect)
	mux.HandleFunc("/api/setup/test", srv.handleTest)
	mux.HandleFunc("/api/setup/save", srv.handleSave)

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		s.log().Debug("api request",
			logging.String("request_id", id),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := setup.Evaluate(r.Context(), s.daemon.ConfigPath())
	s.writeJSON(w, http.StatusOK, status)
}

func (s *apiServer) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	detector := setup.Detector{Root: s.dataRoot}
	s.writeJSON(w, http.StatusOK, detector.Detect())
}

type testConnectionRequest struct {
	URL string `json:"url"`
}

// handleTest probes a candidate server URL. Probe failures are part of the
// normal wizard flow, so they come back as a 200 with success=false rather
// than an HTTP error.
func (s *apiServer) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req testConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result := setup.Probe(r.Context(), req.URL, setup.TestProbeTimeout)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var input setup.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writer := setup.NewWriter(s.daemon.ConfigPath(), s.logger)
	if err := writer.Save(input); err != nil {
		s.log().Error("failed to save configuration", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Configuration saved. Please restart the application.",
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
