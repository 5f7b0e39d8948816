package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/cours-de-latin/lemmatizer"
)

// ---- JSON types ---------------------------------------------------------

type lemmatizeRequest struct {
	Text *string `json:"text"`
}

type tokenJSON struct {
	Text  string  `json:"text"`
	Lemma string  `json:"lemma"`
	POS   string  `json:"pos"`
	Tag   string  `json:"tag"`
	Morph *string `json:"morph"`
}

type lemmatizeResponse struct {
	Lemmatized string      `json:"lemmatized"`
	Tokens     []tokenJSON `json:"tokens,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Loaded bool   `json:"loaded"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// ---- helpers ------------------------------------------------------------

func toTokensJSON(details []lemmatizer.TokenDetail) []tokenJSON {
	out := make([]tokenJSON, 0, len(details))
	for _, d := range details {
		out = append(out, tokenJSON{
			Text:  d.Text,
			Lemma: d.Lemma,
			POS:   d.POS,
			Tag:   d.Tag,
			Morph: d.Morph,
		})
	}
	return out
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Detail: msg})
}

// ---- server -------------------------------------------------------------

type server struct {
	svc     *lemmatizer.Service
	cfg     ServerConfig
	log     *zap.Logger
	metrics *metrics
	cors    *cors.Cors
}

func newServer(svc *lemmatizer.Service, cfg ServerConfig, corsCfg CORSConfig, log *zap.Logger) *server {
	return &server{
		svc:     svc,
		cfg:     cfg,
		log:     log,
		metrics: newMetrics(svc.Handle()),
		cors: cors.New(cors.Options{
			AllowedOrigins: corsCfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/lemmatize", s.handleLemmatize)
	mux.Handle("/metrics", s.metrics.handler())
	return s.cors.Handler(s.instrument(mux))
}

// run serves until ctx is cancelled, then shuts down gracefully.
func (s *server) run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	s.log.Info("HTTP server exited")
	return nil
}

// ---- handlers -----------------------------------------------------------

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	h := s.svc.Handle()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Model:  h.Name(),
		Loaded: h.Loaded(),
	})
}

func (s *server) handleLemmatize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	var body lemmatizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "body must be a JSON object with a 'text' field")
		return
	}
	text := ""
	if body.Text != nil {
		text = *body.Text
	}

	res, err := s.svc.Lemmatize(r.Context(), text)
	switch {
	case err == nil:
	case lemmatizer.IsClientError(err):
		var fe *lemmatizer.FieldError
		msg := err.Error()
		if errors.As(err, &fe) {
			msg = fe.Error()
		}
		s.writeError(w, http.StatusBadRequest, msg)
		return
	case errors.Is(err, lemmatizer.ErrNotReady):
		s.log.Warn("lemmatize before model ready", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "model not loaded")
		return
	default:
		s.log.Error("lemmatize failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "lemmatization failed")
		return
	}

	s.metrics.tokensTotal.Add(float64(len(res.Tokens)))
	out := lemmatizeResponse{Lemmatized: res.Lemmatized}
	if s.cfg.Details {
		out.Tokens = toTokensJSON(res.Tokens)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// ---- middleware ---------------------------------------------------------

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records metrics and an access log line per request.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		path := r.URL.Path
		switch path {
		case "/healthz", "/lemmatize", "/metrics":
		default:
			path = "other"
		}
		s.metrics.observe(path, rec.status, elapsed)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed))
	})
}
