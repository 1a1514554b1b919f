package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/domain"
)

// CandleProvider obtiene velas OHLCV históricas.
type CandleProvider interface {
	// FetchCandles devuelve las velas del par en el timeframe dado ("15", "60", "1D"...),
	// ordenadas de más antigua a más reciente.
	FetchCandles(ctx context.Context, pair, timeframe string, from, to time.Time) ([]domain.Candle, error)
}
