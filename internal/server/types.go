package server

import (
	"fmt"
	"net/http"

	"github.com/MeKo-Tech/qrscan/internal/batch"
	"github.com/MeKo-Tech/qrscan/internal/pipeline"
	"github.com/MeKo-Tech/qrscan/internal/version"
)

// scanner defines the methods needed by the server from a pipeline.
type scanner interface {
	batch.Scanner
	ScanRawLumaResult(pix []byte, width, height int) pipeline.Result
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	scanner     scanner
	info        map[string]interface{}
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	rateLimiter *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	MaxUploadMB     int64
	TimeoutSec      int
	ShutdownTimeout int
	PipelineConfig  pipeline.Config
	RateLimit       RateLimitConfig
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Response types for API endpoints.
type HealthResponse struct {
	Status   string                 `json:"status"`
	Version  string                 `json:"version,omitempty"`
	Time     string                 `json:"time"`
	Pipeline map[string]interface{} `json:"pipeline,omitempty"`
}

type ScanResponse struct {
	Success  bool           `json:"success"`
	Found    bool           `json:"found"`
	Text     string         `json:"text,omitempty"`
	Stage    pipeline.Stage `json:"stage,omitempty"`
	Attempts int            `json:"attempts"`
	Page     int            `json:"page,omitempty"`
	Images   int            `json:"images,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type CleanResponse struct {
	Text    string `json:"text"`
	Changed bool   `json:"changed"`
}

// NewServer creates a scanning server with a pipeline built from config.
// Scan outcomes are recorded as Prometheus metrics.
func NewServer(config Config) (*Server, error) {
	pl, err := pipeline.NewBuilder().
		WithConfig(config.PipelineConfig).
		WithObserver(observeScan).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	s := newServer(pl, config)
	s.info = pl.Info()
	return s, nil
}

func newServer(sc scanner, config Config) *Server {
	s := &Server{
		scanner:     sc,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}
	if s.maxUploadMB <= 0 {
		s.maxUploadMB = 50
	}
	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(config.RateLimit.RequestsPerMinute, config.RateLimit.MaxBytesPerDay)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/scan/image", s.corsMiddleware(s.rateLimitMiddleware(s.scanImageHandler)))
	mux.HandleFunc("/scan/raw", s.corsMiddleware(s.rateLimitMiddleware(s.scanRawHandler)))
	mux.HandleFunc("/scan/pdf", s.corsMiddleware(s.rateLimitMiddleware(s.scanPDFHandler)))
	mux.HandleFunc("/clean", s.corsMiddleware(s.cleanHandler))
	mux.HandleFunc("/ws/scan", s.scanWebSocketHandler)
	mux.Handle("/metrics", metricsHandler())
}

func (s *Server) maxUploadBytes() int64 {
	return s.maxUploadMB * 1024 * 1024
}

func versionString() string {
	v, _, _ := version.Info()
	return v
}
