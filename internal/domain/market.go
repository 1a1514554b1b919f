package domain

import (
	"fmt"
	"strings"
	"time"
)

// Ticker es el resumen de 24h de un par tal como lo publica el exchange.
type Ticker struct {
	Pair        string    `json:"pair"`
	Name        string    `json:"name,omitempty"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Last        float64   `json:"last"`
	Buy         float64   `json:"buy"`  // mejor bid cotizado
	Sell        float64   `json:"sell"` // mejor ask cotizado
	VolumeBase  float64   `json:"vol_base"`
	VolumeQuote float64   `json:"vol_idr"`
	ServerTime  time.Time `json:"server_time"`
}

// Daily extrae las estadísticas del día que usa el motor de señales.
func (t Ticker) Daily() DailyStats {
	return DailyStats{High: t.High, Low: t.Low, Last: t.Last}
}

// BaseAsset devuelve el activo base en mayúsculas ("btcidr" → "BTC").
func (t Ticker) BaseAsset() string {
	return strings.ToUpper(strings.TrimSuffix(t.Pair, "idr"))
}

// Candle es una vela OHLCV del histórico.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Closes devuelve los precios de cierre en el orden recibido.
func Closes(candles []Candle) PriceSeries {
	out := make(PriceSeries, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// DailyStats son el máximo, mínimo y último precio del día.
type DailyStats struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
	Last float64 `json:"last"`
}

// Levels son soporte y resistencia del día.
type Levels struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// Volatility es el rango del día en porcentaje sobre el mínimo.
func Volatility(d DailyStats) (float64, error) {
	if d.Low == 0 {
		return 0, fmt.Errorf("domain.Volatility: low is zero: %w", ErrDivisionUndefined)
	}
	return (d.High - d.Low) / d.Low * 100, nil
}

// SupportResistance toma el mínimo como soporte y el máximo como resistencia.
func SupportResistance(d DailyStats) Levels {
	return Levels{Support: d.Low, Resistance: d.High}
}

// RiskRewardRatio es (resistencia - compra) / (compra - soporte).
// Si la compra está por debajo del soporte el ratio sale negativo y se
// devuelve tal cual.
func RiskRewardRatio(buyPrice float64, d DailyStats) (float64, error) {
	lv := SupportResistance(d)
	risk := buyPrice - lv.Support
	if risk == 0 {
		return 0, fmt.Errorf("domain.RiskRewardRatio: buy price equals support %v: %w", lv.Support, ErrDivisionUndefined)
	}
	return (lv.Resistance - buyPrice) / risk, nil
}
