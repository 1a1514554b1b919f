package indodax

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/domain"
)

// NormalizePair convierte "BTC_IDR", "btc/idr" o "btcidr" a "btcidr".
func NormalizePair(pair string) string {
	r := strings.NewReplacer("_", "", "/", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(pair)))
}

// symbol es el formato que espera el endpoint de tradingview ("BTCIDR").
func symbol(pair string) string {
	return strings.ToUpper(NormalizePair(pair))
}

func (r tickerRaw) number(key string) float64 {
	raw, ok := r[key]
	if !ok {
		return 0
	}
	var n flexNumber
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return float64(n)
}

func (r tickerRaw) text(key string) string {
	raw, ok := r[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// baseVolume busca la clave vol_<activo> que no es la del quote.
func (r tickerRaw) baseVolume(pair string) float64 {
	base := strings.TrimSuffix(NormalizePair(pair), "idr")
	if _, ok := r["vol_"+base]; ok {
		return r.number("vol_" + base)
	}
	for k := range r {
		if strings.HasPrefix(k, "vol_") && k != "vol_idr" {
			return r.number(k)
		}
	}
	return 0
}

// mapTicker convierte el DTO del ticker a domain.Ticker.
func mapTicker(pair string, r tickerRaw) domain.Ticker {
	t := domain.Ticker{
		Pair:        NormalizePair(pair),
		Name:        r.text("name"),
		High:        r.number("high"),
		Low:         r.number("low"),
		Last:        r.number("last"),
		Buy:         r.number("buy"),
		Sell:        r.number("sell"),
		VolumeBase:  r.baseVolume(pair),
		VolumeQuote: r.number("vol_idr"),
	}
	if ts := int64(r.number("server_time")); ts > 0 {
		t.ServerTime = time.Unix(ts, 0).UTC()
	}
	return t
}

// mapTickers convierte el mapa de /api/tickers, ordenado por par.
func mapTickers(raw map[string]tickerRaw) []domain.Ticker {
	out := make([]domain.Ticker, 0, len(raw))
	for pair, r := range raw {
		out = append(out, mapTicker(pair, r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pair < out[j].Pair })
	return out
}

// mapOrderBook convierte la profundidad a domain.OrderBook.
// Ignora niveles con precio o cantidad <= 0. Bids desc, asks asc.
func mapOrderBook(pair string, r depthResponse) domain.OrderBook {
	ob := domain.OrderBook{Pair: NormalizePair(pair)}

	for _, lvl := range r.Buy {
		if e, ok := parseLevel(lvl); ok {
			ob.Bids = append(ob.Bids, e)
		}
	}
	for _, lvl := range r.Sell {
		if e, ok := parseLevel(lvl); ok {
			ob.Asks = append(ob.Asks, e)
		}
	}

	sort.Slice(ob.Bids, func(i, j int) bool { return ob.Bids[i].Price > ob.Bids[j].Price })
	sort.Slice(ob.Asks, func(i, j int) bool { return ob.Asks[i].Price < ob.Asks[j].Price })
	return ob
}

func parseLevel(lvl [2]flexNumber) (domain.BookEntry, bool) {
	price, size := float64(lvl[0]), float64(lvl[1])
	if price <= 0 || size <= 0 {
		return domain.BookEntry{}, false
	}
	return domain.BookEntry{Price: price, Size: size}, true
}

// mapCandles convierte las velas, de más antigua a más reciente.
// Descarta velas sin cierre.
func mapCandles(raw []candleRaw) []domain.Candle {
	out := make([]domain.Candle, 0, len(raw))
	for _, c := range raw {
		if c.Close <= 0 {
			continue
		}
		out = append(out, domain.Candle{
			Time:   time.Unix(c.Time, 0).UTC(),
			Open:   float64(c.Open),
			High:   float64(c.High),
			Low:    float64(c.Low),
			Close:  float64(c.Close),
			Volume: float64(c.Volume),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
