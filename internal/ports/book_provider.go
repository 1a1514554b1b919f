package ports

import (
	"context"

	"github.com/alejandrodnm/cryptodash/internal/domain"
)

// BookProvider obtiene el snapshot de profundidad de un par.
type BookProvider interface {
	// FetchOrderBook devuelve bids y asks del par (ej. "btcidr").
	FetchOrderBook(ctx context.Context, pair string) (domain.OrderBook, error)
}
