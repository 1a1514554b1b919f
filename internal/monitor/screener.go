package monitor

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/alejandrodnm/cryptodash/internal/ports"
)

// ScreenConfig contiene filtros, orden y límite de la vista de mercado.
type ScreenConfig struct {
	Filter     domain.TickerFilter
	SortField  domain.TickerField // vacío = orden alfabético por par
	Descending bool
	Limit      int // 0 = sin límite
}

// DefaultScreenConfig ordena por volumen IDR descendente.
func DefaultScreenConfig() ScreenConfig {
	return ScreenConfig{SortField: domain.FieldVolumeQuote, Descending: true}
}

// Screen es el resultado de una pasada del screener. Overview se calcula
// sobre todos los tickers del exchange, no solo sobre los filtrados.
type Screen struct {
	Tickers  []domain.Ticker       `json:"tickers"`
	Overview domain.MarketOverview `json:"overview"`
}

// Screener arma la vista de mercado a partir de todos los tickers.
type Screener struct {
	tickers ports.TickerProvider
}

// NewScreener crea un Screener sobre el proveedor dado.
func NewScreener(tickers ports.TickerProvider) *Screener {
	return &Screener{tickers: tickers}
}

// Screen hace fetch de todos los tickers y aplica filtro, orden y límite.
func (s *Screener) Screen(ctx context.Context, cfg ScreenConfig) (Screen, error) {
	if cfg.SortField != "" {
		if _, err := cfg.SortField.Value(domain.Ticker{}); err != nil {
			return Screen{}, fmt.Errorf("monitor.Screen: %w", err)
		}
	}

	all, err := s.tickers.FetchTickers(ctx)
	if err != nil {
		return Screen{}, fmt.Errorf("monitor.Screen: %w", err)
	}

	filtered := domain.FilterTickers(all, cfg.Filter)
	if cfg.SortField != "" {
		filtered, err = domain.SortTickers(filtered, cfg.SortField, cfg.Descending)
		if err != nil {
			return Screen{}, fmt.Errorf("monitor.Screen: %w", err)
		}
	}
	if cfg.Limit > 0 && len(filtered) > cfg.Limit {
		filtered = filtered[:cfg.Limit]
	}

	return Screen{Tickers: filtered, Overview: domain.Overview(all)}, nil
}
