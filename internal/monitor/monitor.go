package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/alejandrodnm/cryptodash/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrPollInProgress se devuelve cuando un poll arranca con otro todavía en curso.
var ErrPollInProgress = errors.New("poll already in progress")

// Config contiene la configuración del monitor.
type Config struct {
	Pair         string
	PollInterval time.Duration
	// MaxHistory recorta la serie a las últimas N observaciones; 0 = sin límite.
	MaxHistory int
	// SeedTimeframe y SeedLookback siembran la serie con cierres de velas
	// cuando el storage no tiene historia. SeedTimeframe vacío = no sembrar.
	SeedTimeframe string
	SeedLookback  time.Duration
	Once          bool
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		Pair:         "btcidr",
		PollInterval: 30 * time.Second,
		MaxHistory:   1000,
		SeedLookback: 24 * time.Hour,
	}
}

// Monitor es el dueño de la serie de precios: la amplía en cada poll y se la
// pasa al motor de señales, que solo la lee.
type Monitor struct {
	cfg      Config
	tickers  ports.TickerProvider
	books    ports.BookProvider
	candles  ports.CandleProvider
	storage  ports.Storage
	notifier ports.Notifier
	metrics  *Metrics
	now      func() time.Time

	polling atomic.Bool

	mu     sync.RWMutex
	series domain.PriceSeries
	latest *domain.Observation
}

// New crea un Monitor con todas las dependencias inyectadas.
// candles, storage, notifier y metrics pueden ser nil.
func New(
	cfg Config,
	tickers ports.TickerProvider,
	books ports.BookProvider,
	candles ports.CandleProvider,
	storage ports.Storage,
	notifier ports.Notifier,
	metrics *Metrics,
) *Monitor {
	return &Monitor{
		cfg:      cfg,
		tickers:  tickers,
		books:    books,
		candles:  candles,
		storage:  storage,
		notifier: notifier,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Run siembra la serie, hace un poll inmediato y luego uno por intervalo
// hasta que el contexto se cancele. Con cfg.Once solo hace el primero.
func (m *Monitor) Run(ctx context.Context) error {
	slog.Info("monitor starting",
		"pair", m.cfg.Pair,
		"interval", m.cfg.PollInterval,
		"max_history", m.cfg.MaxHistory,
		"once", m.cfg.Once,
	)

	if n, err := m.Seed(ctx); err != nil {
		slog.Warn("seed failed, starting with empty history", "err", err)
	} else {
		slog.Info("history seeded", "observations", n)
	}

	if _, err := m.Poll(ctx); err != nil {
		slog.Error("poll failed", "err", err)
		if m.cfg.Once {
			return err
		}
	}
	if m.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitor stopped")
			return nil
		case <-ticker.C:
			if _, err := m.Poll(ctx); err != nil && !errors.Is(err, ErrPollInProgress) {
				slog.Error("poll failed", "err", err)
			}
		}
	}
}

// Seed carga la historia inicial: primero desde storage, si está vacío desde
// las velas. Devuelve cuántas observaciones quedaron en la serie.
func (m *Monitor) Seed(ctx context.Context) (int, error) {
	prices, err := m.seedPrices(ctx)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.series = append(prices, m.series...)
	m.trimLocked()
	return len(m.series), nil
}

func (m *Monitor) seedPrices(ctx context.Context) ([]float64, error) {
	limit := m.cfg.MaxHistory
	if limit <= 0 {
		limit = domain.LongMAPeriod * 5
	}

	if m.storage != nil {
		prices, err := m.storage.RecentPrices(ctx, m.cfg.Pair, limit)
		if err != nil {
			return nil, fmt.Errorf("monitor.Seed: storage: %w", err)
		}
		if len(prices) > 0 {
			return prices, nil
		}
	}

	if m.candles == nil || m.cfg.SeedTimeframe == "" {
		return nil, nil
	}
	to := m.now()
	candles, err := m.candles.FetchCandles(ctx, m.cfg.Pair, m.cfg.SeedTimeframe, to.Add(-m.cfg.SeedLookback), to)
	if err != nil {
		return nil, fmt.Errorf("monitor.Seed: candles: %w", err)
	}
	return domain.Closes(candles), nil
}

// Poll hace fetch de ticker y book en paralelo, amplía la serie, recalcula el
// informe y lo notifica y persiste. Un poll concurrente devuelve ErrPollInProgress.
func (m *Monitor) Poll(ctx context.Context) (domain.Observation, error) {
	if !m.polling.CompareAndSwap(false, true) {
		m.observeResult("skipped")
		return domain.Observation{}, ErrPollInProgress
	}
	defer m.polling.Store(false)

	start := time.Now()
	obs, err := m.poll(ctx)
	if err != nil {
		m.observeResult("error")
		return domain.Observation{}, err
	}

	if m.notifier != nil {
		if err := m.notifier.Notify(ctx, obs); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	if m.storage != nil {
		if err := m.storage.SaveObservation(ctx, obs); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	m.observe(obs, time.Since(start))
	slog.Debug("poll complete",
		"pair", obs.Pair,
		"last", obs.Ticker.Last,
		"history", obs.Report.HistoryLen,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return obs, nil
}

func (m *Monitor) poll(ctx context.Context) (domain.Observation, error) {
	var (
		ticker domain.Ticker
		book   domain.OrderBook
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := m.tickers.FetchTicker(gctx, m.cfg.Pair)
		if err != nil {
			return fmt.Errorf("fetch ticker: %w", err)
		}
		ticker = t
		return nil
	})
	g.Go(func() error {
		b, err := m.books.FetchOrderBook(gctx, m.cfg.Pair)
		if err != nil {
			return fmt.Errorf("fetch book: %w", err)
		}
		book = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Observation{}, fmt.Errorf("monitor.Poll: %w", err)
	}

	m.mu.Lock()
	m.series = append(m.series, ticker.Last)
	m.trimLocked()
	snapshot := m.series.Tail(0)
	m.mu.Unlock()

	report := domain.Analyze(domain.SignalInput{
		Series:    snapshot,
		Book:      book,
		Daily:     ticker.Daily(),
		QuotedBuy: ticker.Buy,
	})

	obs := domain.Observation{
		ID:         uuid.NewString(),
		Pair:       m.cfg.Pair,
		ObservedAt: m.now().UTC(),
		Ticker:     ticker,
		Report:     report,
	}

	m.mu.Lock()
	m.latest = &obs
	m.mu.Unlock()
	return obs, nil
}

// trimLocked aplica MaxHistory. Requiere m.mu tomado.
func (m *Monitor) trimLocked() {
	if m.cfg.MaxHistory > 0 && len(m.series) > m.cfg.MaxHistory {
		m.series = m.series.Tail(m.cfg.MaxHistory)
	}
}

// Latest devuelve la última observación, si ya hubo algún poll.
func (m *Monitor) Latest() (domain.Observation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return domain.Observation{}, false
	}
	return *m.latest, true
}

// Series devuelve una copia de la serie actual.
func (m *Monitor) Series() domain.PriceSeries {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.series.Tail(0)
}

// Pair devuelve el par monitorizado.
func (m *Monitor) Pair() string {
	return m.cfg.Pair
}

func (m *Monitor) observeResult(result string) {
	if m.metrics != nil {
		m.metrics.PollsTotal.WithLabelValues(result).Inc()
	}
}

func (m *Monitor) observe(obs domain.Observation, d time.Duration) {
	if m.metrics == nil {
		return
	}
	r := obs.Report
	m.metrics.PollsTotal.WithLabelValues("ok").Inc()
	m.metrics.PollDuration.Observe(d.Seconds())
	m.metrics.LastPrice.WithLabelValues(obs.Pair).Set(obs.Ticker.Last)
	m.metrics.HistoryLen.WithLabelValues(obs.Pair).Set(float64(r.HistoryLen))
	if r.RSI14 != nil {
		m.metrics.RSI.WithLabelValues(obs.Pair).Set(*r.RSI14)
	}
	if r.VolatilityPercent != nil {
		m.metrics.Volatility.WithLabelValues(obs.Pair).Set(*r.VolatilityPercent)
	}
}
