package indodax

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alejandrodnm/cryptodash/internal/domain"
)

// FetchTicker implementa ports.TickerProvider.
func (c *Client) FetchTicker(ctx context.Context, pair string) (domain.Ticker, error) {
	p := NormalizePair(pair)
	var resp tickerResponse
	if err := c.get(ctx, c.base+"/api/ticker/"+url.PathEscape(p), &resp); err != nil {
		return domain.Ticker{}, fmt.Errorf("indodax.FetchTicker: %s: %w", p, err)
	}
	if err := resp.err(); err != nil {
		return domain.Ticker{}, fmt.Errorf("indodax.FetchTicker: %s: %w", p, err)
	}
	if len(resp.Ticker) == 0 {
		return domain.Ticker{}, fmt.Errorf("indodax.FetchTicker: %s: empty ticker", p)
	}
	return mapTicker(p, resp.Ticker), nil
}

// FetchTickers implementa ports.TickerProvider.
func (c *Client) FetchTickers(ctx context.Context) ([]domain.Ticker, error) {
	var resp tickersResponse
	if err := c.get(ctx, c.base+"/api/tickers", &resp); err != nil {
		return nil, fmt.Errorf("indodax.FetchTickers: %w", err)
	}
	if err := resp.err(); err != nil {
		return nil, fmt.Errorf("indodax.FetchTickers: %w", err)
	}
	return mapTickers(resp.Tickers), nil
}
