package domain

import "errors"

var (
	// ErrInvalidInput indica que un parámetro de entrada viola una precondición.
	// El llamador no recibe resultados parciales.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionUndefined indica que el divisor de un ratio es cero
	// (low == 0 en volatilidad, buyPrice == support en risk/reward).
	ErrDivisionUndefined = errors.New("division undefined")
)
