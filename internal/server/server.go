// Package server exposes the simulation engine over HTTP. It owns
// request parsing and validation, status mapping (invalid argument to
// 400, not found to 404), and CORS; the engine stays transport-free.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/signalworks/dsssim/internal/config"
	"github.com/signalworks/dsssim/internal/engine"
	"github.com/signalworks/dsssim/internal/stagecache"
)

// inlineSpectra are the stages whose spectra ride along in a simulate
// response, saving the UI a round trip for its default plots.
var inlineSpectra = []stagecache.Stage{
	stagecache.StageModulator,
	stagecache.StageChannel,
}

// Server serves the simulation API for a single engine instance.
type Server struct {
	engine     *engine.Engine
	cfg        config.Config
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// New creates a server around an explicitly constructed engine.
func New(e *engine.Engine, cfg config.Config, logger *slog.Logger) *Server {
	return &Server{
		engine: e,
		cfg:    cfg,
		logger: logger,
	}
}

// Addr returns the address the server is listening on. Returns empty
// string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler returns the routed API handler, wrapped in CORS. Exposed so
// tests can drive the API without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	mux.HandleFunc("GET /api/spectra/{stage}", s.handleStageDetail)
	return withCORS(mux)
}

// ListenAndServe starts the HTTP server on the configured address and
// blocks until the context is cancelled or the server fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: s.Handler()}
	s.mu.Unlock()

	s.logger.Info("api listening", "addr", s.addr)

	// Graceful shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	req.applyDefaults(s.cfg.Defaults)
	if err := req.validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.Simulate(req.params())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.logger.Debug("simulation complete",
		"id", result.SimulationID,
		"scheme", *req.CodingScheme,
		"mismatch", result.Mismatch,
	)

	stages := make([]string, 0, len(result.Stages))
	for _, stage := range stagecache.Stages() {
		if _, ok := result.Stages[stage]; ok {
			stages = append(stages, string(stage))
		}
	}

	var inline []SpectrumSnapshot
	for _, stage := range inlineSpectra {
		if snap, ok := result.Stages[stage]; ok {
			inline = append(inline, toSpectrum(stage, snap, s.cfg.Server.MaxPoints))
		}
	}

	writeJSON(w, http.StatusOK, SimulationResponse{
		SimulationID:    result.SimulationID,
		DecodedMessage:  result.DecodedMessage,
		Status:          "complete",
		Mismatch:        result.Mismatch,
		CodingScheme:    *req.CodingScheme,
		NoiseBandwidth:  *req.NoiseBandwidth,
		AvailableStages: stages,
		InlineSpectra:   inline,
	})
}

func (s *Server) handleStageDetail(w http.ResponseWriter, r *http.Request) {
	stage := stagecache.Stage(r.PathValue("stage"))
	if !stage.Valid() {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown stage %q", stage))
		return
	}
	simulationID := r.URL.Query().Get("simulation_id")
	if len(simulationID) < 8 {
		s.writeError(w, http.StatusBadRequest, "simulation_id must be at least 8 characters")
		return
	}

	snap, err := s.engine.GetStage(simulationID, stage)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StageDetailResponse{
		Stage:    string(stage),
		Waveform: toWaveform(stage, snap, s.cfg.Server.MaxPoints),
		Spectrum: toSpectrum(stage, snap, s.cfg.Server.MaxPoints),
	})
}

// writeEngineError maps engine sentinels onto HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidArgument):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Simulation or stage not found")
	default:
		s.logger.Error("simulation failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// withCORS applies a permissive cross-origin policy so browser-based
// frontends can call the API from any origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
