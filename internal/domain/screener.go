package domain

import (
	"fmt"
	"sort"
	"strings"
)

// TickerFilter filtra la vista de mercado. Un campo a cero no filtra.
type TickerFilter struct {
	Search    string
	MinPrice  float64
	MaxPrice  float64
	MinVolume float64 // volumen en IDR
	Favorites []string
}

// Match indica si el ticker pasa todos los filtros activos.
func (f TickerFilter) Match(t Ticker) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Pair), strings.ToLower(f.Search)) {
		return false
	}
	if f.MinPrice > 0 && t.Last < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && t.Last > f.MaxPrice {
		return false
	}
	if f.MinVolume > 0 && t.VolumeQuote < f.MinVolume {
		return false
	}
	if len(f.Favorites) > 0 && !containsFold(f.Favorites, t.Pair) {
		return false
	}
	return true
}

// FilterTickers devuelve los tickers que pasan el filtro, en el mismo orden.
func FilterTickers(tickers []Ticker, f TickerFilter) []Ticker {
	out := make([]Ticker, 0, len(tickers))
	for _, t := range tickers {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// TickerField es una columna numérica del ticker usada por reglas y orden.
type TickerField string

const (
	FieldVolumeQuote TickerField = "vol_idr"
	FieldLast        TickerField = "last"
	FieldBuy         TickerField = "buy"
	FieldSell        TickerField = "sell"
)

// Value extrae el valor del campo del ticker.
func (f TickerField) Value(t Ticker) (float64, error) {
	switch f {
	case FieldVolumeQuote:
		return t.VolumeQuote, nil
	case FieldLast:
		return t.Last, nil
	case FieldBuy:
		return t.Buy, nil
	case FieldSell:
		return t.Sell, nil
	}
	return 0, fmt.Errorf("domain.TickerField: unknown field %q: %w", string(f), ErrInvalidInput)
}

// HighlightRule marca con Label los tickers cuyo campo cumple la condición.
type HighlightRule struct {
	Field     TickerField `yaml:"field" json:"field"`
	Condition string      `yaml:"condition" json:"condition"` // ">", "<" o "="
	Value     float64     `yaml:"value" json:"value"`
	Label     string      `yaml:"label" json:"label"`
}

// Validate rechaza campos o condiciones desconocidos.
func (r HighlightRule) Validate() error {
	if _, err := r.Field.Value(Ticker{}); err != nil {
		return err
	}
	switch r.Condition {
	case ">", "<", "=":
		return nil
	}
	return fmt.Errorf("domain.HighlightRule: unknown condition %q: %w", r.Condition, ErrInvalidInput)
}

// Matches evalúa la regla contra el ticker. Reglas inválidas nunca matchean.
func (r HighlightRule) Matches(t Ticker) bool {
	v, err := r.Field.Value(t)
	if err != nil {
		return false
	}
	switch r.Condition {
	case ">":
		return v > r.Value
	case "<":
		return v < r.Value
	case "=":
		return v == r.Value
	}
	return false
}

// Highlight devuelve la etiqueta de la primera regla que matchea, o "".
func Highlight(t Ticker, rules []HighlightRule) string {
	for _, r := range rules {
		if r.Matches(t) {
			label := r.Label
			if label == "" {
				label = "*"
			}
			return label
		}
	}
	return ""
}

// MarketOverview son los agregados de la vista de mercado.
type MarketOverview struct {
	Count            int     `json:"count"`
	TotalQuoteVolume float64 `json:"total_vol_idr"`
	HighestVolume    *Ticker `json:"highest_volume"`
	HighestLast      *Ticker `json:"highest_last"`
	LowestLast       *Ticker `json:"lowest_last"`
}

// Overview calcula totales y extremos. Con lista vacía los extremos son nil.
func Overview(tickers []Ticker) MarketOverview {
	ov := MarketOverview{Count: len(tickers)}
	for i := range tickers {
		t := tickers[i]
		ov.TotalQuoteVolume += t.VolumeQuote
		if ov.HighestVolume == nil || t.VolumeQuote > ov.HighestVolume.VolumeQuote {
			ov.HighestVolume = &t
		}
		if ov.HighestLast == nil || t.Last > ov.HighestLast.Last {
			ov.HighestLast = &t
		}
		if ov.LowestLast == nil || t.Last < ov.LowestLast.Last {
			ov.LowestLast = &t
		}
	}
	return ov
}

// SortTickers devuelve una copia ordenada por el campo dado. Orden estable;
// el slice de entrada no se modifica.
func SortTickers(tickers []Ticker, field TickerField, descending bool) ([]Ticker, error) {
	if _, err := field.Value(Ticker{}); err != nil {
		return nil, err
	}
	out := make([]Ticker, len(tickers))
	copy(out, tickers)
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := field.Value(out[i])
		b, _ := field.Value(out[j])
		if descending {
			return a > b
		}
		return a < b
	})
	return out, nil
}
