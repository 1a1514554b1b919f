package domain

import "time"

// Observation es el resultado de un poll: el ticker recibido y el informe
// calculado con la serie vigente en ese momento.
type Observation struct {
	ID         string       `json:"id"`
	Pair       string       `json:"pair"`
	ObservedAt time.Time    `json:"observed_at"`
	Ticker     Ticker       `json:"ticker"`
	Report     SignalReport `json:"report"`
}
