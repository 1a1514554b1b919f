package indodax

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alejandrodnm/cryptodash/internal/domain"
)

// FetchOrderBook implementa ports.BookProvider.
func (c *Client) FetchOrderBook(ctx context.Context, pair string) (domain.OrderBook, error) {
	p := NormalizePair(pair)
	endpoint := c.base + "/api/depth/" + url.PathEscape(p)
	if c.depthURL != "" {
		endpoint = fmt.Sprintf(c.depthURL, url.QueryEscape(p))
	}

	var resp depthResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return domain.OrderBook{}, fmt.Errorf("indodax.FetchOrderBook: %s: %w", p, err)
	}
	if err := resp.err(); err != nil {
		return domain.OrderBook{}, fmt.Errorf("indodax.FetchOrderBook: %s: %w", p, err)
	}
	return mapOrderBook(p, resp), nil
}
