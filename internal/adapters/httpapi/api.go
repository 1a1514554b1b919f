package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/alejandrodnm/cryptodash/internal/monitor"
	"github.com/gin-gonic/gin"
)

const (
	requestTimeout      = 15 * time.Second
	requestIDContextKey = "request_id"
	requestIDHeaderKey  = "X-Request-ID"
)

// SignalSource expone el estado del monitor.
type SignalSource interface {
	Latest() (domain.Observation, bool)
	Series() domain.PriceSeries
	Pair() string
}

// MarketScreener arma la vista de mercado.
type MarketScreener interface {
	Screen(ctx context.Context, cfg monitor.ScreenConfig) (monitor.Screen, error)
}

// HistoryStore lee observaciones persistidas.
type HistoryStore interface {
	GetHistory(ctx context.Context, pair string, from, to time.Time) ([]domain.Observation, error)
}

// Server es la API JSON que consume el dashboard web.
// Cualquier dependencia nil desactiva sus rutas.
type Server struct {
	signals    SignalSource
	screener   MarketScreener
	history    HistoryStore
	metrics    http.Handler
	highlights []domain.HighlightRule
	logger     *slog.Logger
}

// Option ajusta el Server al construirlo.
type Option func(*Server)

// WithSignals habilita /api/signal y /api/series.
func WithSignals(src SignalSource) Option {
	return func(s *Server) { s.signals = src }
}

// WithScreener habilita /api/market.
func WithScreener(sc MarketScreener) Option {
	return func(s *Server) { s.screener = sc }
}

// WithHistory habilita /api/history (requiere también WithSignals).
func WithHistory(h HistoryStore) Option {
	return func(s *Server) { s.history = h }
}

// WithMetrics expone el handler Prometheus en /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithHighlights aplica reglas de resaltado a /api/market.
func WithHighlights(rules []domain.HighlightRule) Option {
	return func(s *Server) { s.highlights = rules }
}

// New crea el Server. El simulador siempre está disponible.
func New(logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes configura el router gin con middleware y rutas.
func (s *Server) Routes() *gin.Engine {
	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(s.loggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/healthz", s.health)

	api := router.Group("/api")
	api.POST("/simulate", s.simulate)
	if s.signals != nil {
		api.GET("/signal", s.signal)
		api.GET("/series", s.series)
	}
	if s.history != nil && s.signals != nil {
		api.GET("/history", s.observations)
	}
	if s.screener != nil {
		api.GET("/market", s.market)
	}
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics))
	}
	return router
}

// ListenAndServe sirve en addr hasta que ctx se cancele; luego apaga con gracia.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
