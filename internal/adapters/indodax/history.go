package indodax

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/domain"
)

// FetchCandles implementa ports.CandleProvider usando el endpoint de tradingview.
func (c *Client) FetchCandles(ctx context.Context, pair, timeframe string, from, to time.Time) ([]domain.Candle, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("indodax.FetchCandles: empty range %s..%s: %w", from, to, domain.ErrInvalidInput)
	}

	q := url.Values{}
	q.Set("symbol", symbol(pair))
	q.Set("tf", timeframe)
	q.Set("from", strconv.FormatInt(from.Unix(), 10))
	q.Set("to", strconv.FormatInt(to.Unix(), 10))

	var raw []candleRaw
	if err := c.get(ctx, c.base+"/tradingview/history_v2?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("indodax.FetchCandles: %s: %w", pair, err)
	}
	return mapCandles(raw), nil
}
