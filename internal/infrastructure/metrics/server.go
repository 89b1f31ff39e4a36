// internal/infrastructure/metrics/server.go
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"neko-signal-bot/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusFunc отдаёт JSON-совместимый снимок для /status
type StatusFunc func() interface{}

// Server HTTP сервер /metrics, /healthz, /status
type Server struct {
	httpServer *http.Server
	metrics    *Metrics
	status     StatusFunc
}

func NewServer(port int, m *Metrics, status StatusFunc) *Server {
	s := &Server{metrics: m, status: status}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler возвращает маршрутизатор (используется и в тестах)
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var body interface{} = map[string]string{}
	if s.status != nil {
		body = s.status()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("⚠️ /status encode: %v", err)
	}
}

// Start запускает сервер в фоне
func (s *Server) Start() {
	go func() {
		logger.Info("📈 Metrics server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("❌ Metrics server: %v", err)
		}
	}()
}

// Stop корректно останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
