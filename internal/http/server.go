// Package http exposes the ledger over a JSON REST surface. Handlers never
// panic the process: store failures come back as 500 with a fixed message,
// unknown ids as 404, malformed requests as 400.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"dairyledger/internal/services"
)

// Mutation budget per client IP. Read traffic is not limited so dashboards
// can poll freely.
const (
	mutationRateLimit  = 60
	mutationRateWindow = time.Minute
)

type Server struct {
	http.Server
	accessKey   string
	rateLimiter *rateLimiter
	metrics     securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run http.Server.
// accessKey, when non-empty, gates mutating and export endpoints behind the
// X-Access-Key header.
func NewServer(addr, accessKey string, expenses, income *services.RecordService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		accessKey:   accessKey,
		rateLimiter: newRateLimiter(mutationRateLimit, mutationRateWindow),
	}

	for _, svc := range []*services.RecordService{expenses, income} {
		base := "/api/" + svc.Kind().Resource()
		mux.HandleFunc(base, s.withMiddleware(s.handleRecords(svc)))
		mux.HandleFunc(base+"/report", s.withMiddleware(s.handleReport(svc)))
		mux.HandleFunc(base+"/export", s.withMiddleware(s.handleExport(svc)))
		mux.HandleFunc(base+"/import", s.withMiddleware(s.handleImport(svc)))
		mux.HandleFunc(base+"/backup", s.withMiddleware(s.handleBackup(svc)))
		mux.HandleFunc(base+"/restore", s.withMiddleware(s.handleRestore(svc)))
		mux.HandleFunc(base+"/backups", s.withMiddleware(s.handleFileBackups(svc)))
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		rateLimited, suspicious := s.metrics.snapshot()
		slog.Info("Security counters at shutdown",
			"rate_limit_hits", rateLimited,
			"suspicious_requests", suspicious)
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
