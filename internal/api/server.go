// Package api serves the prediction form, the JSON API and the live socket.
package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lox/raincheck/internal/models"
	"github.com/lox/raincheck/internal/narrative"
	"github.com/lox/raincheck/internal/predict"
	"github.com/lox/raincheck/internal/store"
)

// ArtifactInfo describes the loaded model for /health.
type ArtifactInfo struct {
	ModelKind  string    `json:"model_kind"`
	ModelPath  string    `json:"model_path"`
	ScalerPath string    `json:"scaler_path"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Options wires a Server. Narrator defaults to the template narrator, History
// may be nil and Clock defaults to the real clock.
type Options struct {
	Predictor predict.Service
	Narrator  narrative.Narrator
	History   *store.Store
	Artifacts ArtifactInfo
	Clock     clockwork.Clock
	Logger    *zap.Logger
}

type Server struct {
	predictor predict.Service
	narrator  narrative.Narrator
	history   *store.Store
	artifacts ArtifactInfo
	clock     clockwork.Clock
	logger    *zap.Logger
	tmpl      *template.Template
	upgrader  websocket.Upgrader
	started   time.Time
}

func NewServer(opts Options) *Server {
	if opts.Narrator == nil {
		opts.Narrator = narrative.Template{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		predictor: opts.Predictor,
		narrator:  opts.Narrator,
		history:   opts.History,
		artifacts: opts.Artifacts,
		clock:     opts.Clock,
		logger:    opts.Logger,
		tmpl:      newTemplates(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		started: opts.Clock.Now(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /predict", s.handlePredictForm)
	mux.HandleFunc("GET /badge.png", s.handleBadge)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("POST /api/predict", s.handleAPIPredict)
	mux.HandleFunc("GET /api/slots", s.handleAPISlots)
	mux.HandleFunc("GET /api/vocabulary", s.handleAPIVocabulary)
	mux.HandleFunc("GET /api/history", s.handleAPIHistory)
	mux.HandleFunc("GET /api/history/stats", s.handleAPIHistoryStats)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", s.clock.Since(start)))
	})
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// classify validates obs and runs the predictor.
func (s *Server) classify(ctx context.Context, obs models.Observation, source string) (models.Prediction, error) {
	if err := models.Validate(obs); err != nil {
		return models.Prediction{}, err
	}
	pred, err := s.predictor.Predict(ctx, obs)
	if err != nil {
		s.logger.Error("prediction failed", zap.String("source", source), zap.Error(err))
		return models.Prediction{}, err
	}
	return pred, nil
}

// predict classifies obs and records the result in the history when one is
// configured.
func (s *Server) predict(ctx context.Context, obs models.Observation, source string) (models.Prediction, error) {
	pred, err := s.classify(ctx, obs, source)
	if err != nil {
		return models.Prediction{}, err
	}
	if s.history == nil {
		return pred, nil
	}

	_, err = s.history.InsertPrediction(ctx, models.PredictionRecord{
		Observation: obs,
		Prediction:  pred,
		Source:      source,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to record prediction", zap.Error(err))
	}
	return pred, nil
}
