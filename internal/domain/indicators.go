package domain

// Periodos de los indicadores que muestra el dashboard.
const (
	RSIPeriod     = 14
	ShortMAPeriod = 50
	LongMAPeriod  = 200
)

// PriceSeries es el histórico de últimos precios observados, en orden de llegada.
// Lo mantiene el llamador; las funciones de este paquete solo lo leen.
type PriceSeries []float64

// Last devuelve el último precio observado, o 0 si la serie está vacía.
func (s PriceSeries) Last() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Tail devuelve una copia de los últimos n elementos (todos si n <= 0 o n >= len).
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 || n >= len(s) {
		n = len(s)
	}
	out := make(PriceSeries, n)
	copy(out, s[len(s)-n:])
	return out
}

// MovingAverage promedia los últimos period elementos de la serie.
// Con menos de period observaciones divide igualmente por period, por lo que
// el valor queda por debajo del promedio real hasta completar la ventana.
// period <= 0 devuelve 0.
func MovingAverage(series []float64, period int) float64 {
	if period <= 0 {
		return 0
	}
	start := len(series) - period
	if start < 0 {
		start = 0
	}
	var sum float64
	for _, p := range series[start:] {
		sum += p
	}
	return sum / float64(period)
}

// RSI calcula el índice de fuerza relativa sobre los primeros period elementos
// de la serie (period-1 deltas). ok es false si no hay historia suficiente.
func RSI(series []float64, period int) (value float64, ok bool) {
	if period <= 0 || len(series) < period {
		return 0, false
	}

	var gains, losses float64
	for i := 1; i < period; i++ {
		delta := series[i] - series[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// rsiPtr adapta RSI a la forma nullable del informe.
func rsiPtr(series []float64, period int) *float64 {
	v, ok := RSI(series, period)
	if !ok {
		return nil
	}
	return &v
}
