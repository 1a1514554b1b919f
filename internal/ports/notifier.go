package ports

import (
	"context"

	"github.com/alejandrodnm/cryptodash/internal/domain"
)

// Notifier presenta cada observación al usuario.
type Notifier interface {
	// Notify muestra el informe de señales de un poll.
	// En la implementación de consola, imprime una línea o una tabla.
	Notify(ctx context.Context, obs domain.Observation) error
}
