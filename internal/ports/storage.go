package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/domain"
)

// Storage persiste las observaciones de cada poll.
type Storage interface {
	// SaveObservation persiste una observación.
	SaveObservation(ctx context.Context, obs domain.Observation) error

	// RecentPrices devuelve los últimos limit precios del par, del más antiguo al más reciente.
	RecentPrices(ctx context.Context, pair string, limit int) ([]float64, error)

	// GetHistory devuelve las observaciones del par en el rango de tiempo dado.
	GetHistory(ctx context.Context, pair string, from, to time.Time) ([]domain.Observation, error)

	// Prune borra observaciones anteriores a before y devuelve cuántas borró.
	Prune(ctx context.Context, before time.Time) (int64, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
