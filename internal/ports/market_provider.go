package ports

import (
	"context"

	"github.com/alejandrodnm/cryptodash/internal/domain"
)

// TickerProvider obtiene los resúmenes de 24h del exchange.
type TickerProvider interface {
	// FetchTicker devuelve el ticker de un solo par.
	FetchTicker(ctx context.Context, pair string) (domain.Ticker, error)

	// FetchTickers devuelve los tickers de todos los pares listados.
	FetchTickers(ctx context.Context) ([]domain.Ticker, error)
}
