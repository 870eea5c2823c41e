package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/ogulcanaydogan/fairparity/internal/hash"
	"github.com/ogulcanaydogan/fairparity/internal/logging"
	"github.com/ogulcanaydogan/fairparity/internal/parity"
	"github.com/ogulcanaydogan/fairparity/pkg/types"
)

// Server answers parity requests over HTTP. Identical requests share one
// computation and its result is cached for Config.CacheTTL.
type Server struct {
	cfg      Config
	log      *slog.Logger
	validate *validator.Validate
	cache    *resultCache
	group    singleflight.Group
	metrics  *telemetry
	now      func() time.Time
}

func New(cfg Config) *Server {
	return &Server{
		cfg:      cfg,
		log:      logging.New("server"),
		validate: validator.New(),
		cache:    newResultCache(cfg.CacheTTL),
		metrics:  newTelemetry(),
		now:      time.Now,
	}
}

type AuditResponse struct {
	Results      []types.MetricResult `json:"results"`
	ResultDigest string               `json:"result_digest"`
}

type CatalogEntry struct {
	Metric  string   `json:"metric"`
	Label   string   `json:"label"`
	Aliases []string `json:"aliases"`
	Formula string   `json:"formula"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics", s.handleCatalog)
		r.Post("/parity/{metric}", s.handleParity)
		r.Post("/audit", s.handleAudit)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	defs := parity.Catalog()
	out := make([]CatalogEntry, len(defs))
	for i, d := range defs {
		out[i] = CatalogEntry{Metric: string(d.Metric), Label: d.Label, Aliases: d.Aliases, Formula: d.Formula}
	}
	render.JSON(w, r, out)
}

func (s *Server) handleParity(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "metric")
	m, err := parity.ParseMetric(raw)
	if err != nil {
		s.fail(w, r, raw, err)
		return
	}
	var req ParityRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, string(m), err)
		return
	}
	results, source, err := s.compute(r.Context(), []parity.Metric{m}, req)
	if err != nil {
		s.fail(w, r, string(m), err)
		return
	}
	s.ok(w, r, string(m), source, results[0])
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var req AuditRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, "audit", err)
		return
	}
	metrics := make([]parity.Metric, 0, len(req.Metrics))
	for _, name := range req.Metrics {
		m, err := parity.ParseMetric(name)
		if err != nil {
			s.fail(w, r, "audit", err)
			return
		}
		metrics = append(metrics, m)
	}
	if len(metrics) == 0 {
		for _, d := range parity.Catalog() {
			if d.Metric == parity.ROCAUC && req.Score == nil {
				continue
			}
			metrics = append(metrics, d.Metric)
		}
	}
	results, source, err := s.compute(r.Context(), metrics, req.ParityRequest)
	if err != nil {
		s.fail(w, r, "audit", err)
		return
	}
	digest, err := hash.Digest(results)
	if err != nil {
		s.fail(w, r, "audit", err)
		return
	}
	s.ok(w, r, "audit", source, AuditResponse{Results: results, ResultDigest: digest})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := render.DecodeJSON(body, v); err != nil {
		return &requestError{err: fmt.Errorf("decode request: %w", err)}
	}
	return s.validate.Struct(v)
}

// compute answers from the cache or runs the engine once per distinct
// request, however many callers ask for it concurrently. The returned source
// is "hit", "shared" or "miss".
func (s *Server) compute(ctx context.Context, metrics []parity.Metric, req ParityRequest) ([]types.MetricResult, string, error) {
	key, err := hash.Digest(struct {
		Metrics []parity.Metric `json:"metrics"`
		Request ParityRequest   `json:"request"`
	}{metrics, req})
	if err != nil {
		return nil, "", &requestError{err: err}
	}
	if res, ok := s.cache.get(key, s.now()); ok {
		s.metrics.cacheHit.Inc()
		return res, "hit", nil
	}
	label := string(metrics[0])
	if len(metrics) > 1 {
		label = "audit"
	}
	v, err, shared := s.group.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ComputeTimeout)
		defer cancel()
		start := time.Now()
		res, err := parity.ComputeAll(ctx, req.input(), metrics)
		s.metrics.compute.WithLabelValues(label).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		out := make([]types.MetricResult, len(res))
		for i, r := range res {
			out[i] = r.Summary()
		}
		s.cache.put(key, out, s.now())
		return out, nil
	})
	if err != nil {
		return nil, "", err
	}
	if shared {
		return v.([]types.MetricResult), "shared", nil
	}
	return v.([]types.MetricResult), "miss", nil
}

func (s *Server) ok(w http.ResponseWriter, r *http.Request, metric, source string, body any) {
	w.Header().Set("X-Cache", source)
	s.metrics.requests.WithLabelValues(metric, strconv.Itoa(http.StatusOK)).Inc()
	render.JSON(w, r, body)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, metric string, err error) {
	status, body := classify(err)
	var re *requestError
	if errors.As(err, &re) && status == http.StatusInternalServerError {
		status, body = http.StatusBadRequest, errorResponse{Error: re.Error(), Code: "invalid_request"}
	}
	if status == http.StatusNotFound {
		metric = "unknown"
	}
	s.metrics.requests.WithLabelValues(strings.ToLower(metric), strconv.Itoa(status)).Inc()
	s.log.WarnContext(r.Context(), "request failed", "metric", metric, "status", status, "error", err)
	render.Status(r, status)
	render.JSON(w, r, body)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// requestError marks a body that could not be decoded.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }
