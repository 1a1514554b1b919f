package domain

// Trend clasifica la tendencia comparando MA50 contra MA200.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// PumpDump es la etiqueta de la heurística de pump/dump.
type PumpDump string

const (
	PumpLikely PumpDump = "pump_likely"
	DumpLikely PumpDump = "dump_likely"
	NoSignal   PumpDump = "no_signal"
)

// Umbrales de la heurística.
const (
	pumpDumpMinVolatility = 5.0
	rsiOversold           = 30.0
	rsiOverbought         = 70.0
)

// TrendOf compara MA50 con MA200 de la serie.
func TrendOf(series []float64) Trend {
	short := MovingAverage(series, ShortMAPeriod)
	long := MovingAverage(series, LongMAPeriod)
	switch {
	case short > long:
		return TrendUp
	case short < long:
		return TrendDown
	default:
		return TrendNeutral
	}
}

// PumpDumpSignal solo emite señal con volatilidad estrictamente mayor a 5%.
// Sin RSI o sin volatilidad calculable (low == 0) el resultado es NoSignal.
func PumpDumpSignal(d DailyStats, book OrderBook, series []float64) PumpDump {
	vol, err := Volatility(d)
	if err != nil || vol <= pumpDumpMinVolatility {
		return NoSignal
	}
	rsi, ok := RSI(series, RSIPeriod)
	if !ok {
		return NoSignal
	}

	depth := book.DepthTotals()
	trend := TrendOf(series)
	switch {
	case depth.BuyTotal > depth.SellTotal && trend == TrendUp && rsi < rsiOversold:
		return PumpLikely
	case depth.SellTotal > depth.BuyTotal && trend == TrendDown && rsi > rsiOverbought:
		return DumpLikely
	default:
		return NoSignal
	}
}

// Recommendation son los precios sugeridos de compra y venta.
// nil significa que no hay recomendación para ese lado.
type Recommendation struct {
	Buy   *float64 `json:"buy"`
	Sell  *float64 `json:"sell"`
	Trend Trend    `json:"trend"`
}

// Recommend sugiere comprar en soporte con RSI sobrevendido, o al último
// precio si perforó el soporte; simétrico para la venta. rsi14 nil salta las
// ramas de RSI.
func Recommend(d DailyStats, rsi14 *float64, trend Trend) Recommendation {
	lv := SupportResistance(d)
	rec := Recommendation{Trend: trend}

	switch {
	case rsi14 != nil && *rsi14 < rsiOversold:
		rec.Buy = ptr(lv.Support)
	case d.Last < lv.Support:
		rec.Buy = ptr(d.Last)
	}

	switch {
	case rsi14 != nil && *rsi14 > rsiOverbought:
		rec.Sell = ptr(lv.Resistance)
	case d.Last > lv.Resistance:
		rec.Sell = ptr(d.Last)
	}
	return rec
}

// SignalInput agrupa lo que el llamador aporta en cada poll.
// QuotedBuy es el bid cotizado por el ticker; se usa como precio de compra
// del ratio riesgo/beneficio.
type SignalInput struct {
	Series    []float64
	Book      OrderBook
	Daily     DailyStats
	QuotedBuy float64
}

// SignalReport es el informe completo de un poll. Los punteros nil son
// "sin datos suficientes", nunca cero.
type SignalReport struct {
	VolatilityPercent *float64 `json:"volatility_percent"`
	Support           float64  `json:"support"`
	Resistance        float64  `json:"resistance"`
	RiskRewardRatio   *float64 `json:"risk_reward_ratio"`
	MA50              float64  `json:"ma50"`
	MA200             float64  `json:"ma200"`
	RSI14             *float64 `json:"rsi14"`
	BuyDepthTotal     float64  `json:"buy_depth_total"`
	SellDepthTotal    float64  `json:"sell_depth_total"`
	BookMidpoint      float64  `json:"book_midpoint"`
	BookSpread        float64  `json:"book_spread"`
	Trend             Trend    `json:"trend"`
	PumpDump          PumpDump `json:"pump_dump"`
	RecommendedBuy    *float64 `json:"recommended_buy"`
	RecommendedSell   *float64 `json:"recommended_sell"`
	HistoryLen        int      `json:"history_len"`
}

// Analyze recalcula el informe entero a partir de las entradas del poll.
// No guarda referencias a la serie ni al book.
func Analyze(in SignalInput) SignalReport {
	lv := SupportResistance(in.Daily)
	depth := in.Book.DepthTotals()
	trend := TrendOf(in.Series)
	rsi := rsiPtr(in.Series, RSIPeriod)
	rec := Recommend(in.Daily, rsi, trend)

	r := SignalReport{
		Support:         lv.Support,
		Resistance:      lv.Resistance,
		MA50:            MovingAverage(in.Series, ShortMAPeriod),
		MA200:           MovingAverage(in.Series, LongMAPeriod),
		RSI14:           rsi,
		BuyDepthTotal:   depth.BuyTotal,
		SellDepthTotal:  depth.SellTotal,
		BookMidpoint:    in.Book.Midpoint(),
		BookSpread:      in.Book.Spread(),
		Trend:           trend,
		PumpDump:        PumpDumpSignal(in.Daily, in.Book, in.Series),
		RecommendedBuy:  rec.Buy,
		RecommendedSell: rec.Sell,
		HistoryLen:      len(in.Series),
	}
	if vol, err := Volatility(in.Daily); err == nil {
		r.VolatilityPercent = &vol
	}
	if rr, err := RiskRewardRatio(in.QuotedBuy, in.Daily); err == nil {
		r.RiskRewardRatio = &rr
	}
	return r
}

func ptr(v float64) *float64 { return &v }
