package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/adapters/httpapi"
	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/alejandrodnm/cryptodash/internal/monitor"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSignals struct {
	obs    domain.Observation
	ok     bool
	series domain.PriceSeries
}

func (f *fakeSignals) Latest() (domain.Observation, bool) { return f.obs, f.ok }
func (f *fakeSignals) Series() domain.PriceSeries         { return f.series }
func (f *fakeSignals) Pair() string                       { return "btcidr" }

type fakeHistory struct {
	pair     string
	from, to time.Time
	obs      []domain.Observation
	err      error
}

func (f *fakeHistory) GetHistory(_ context.Context, pair string, from, to time.Time) ([]domain.Observation, error) {
	f.pair, f.from, f.to = pair, from, to
	return f.obs, f.err
}

type fakeTickers struct {
	tickers []domain.Ticker
	err     error
}

func (f *fakeTickers) FetchTicker(_ context.Context, pair string) (domain.Ticker, error) {
	for _, t := range f.tickers {
		if t.Pair == pair {
			return t, nil
		}
	}
	return domain.Ticker{}, errors.New("not found")
}

func (f *fakeTickers) FetchTickers(context.Context) ([]domain.Ticker, error) {
	return f.tickers, f.err
}

func marketTickers() []domain.Ticker {
	return []domain.Ticker{
		{Pair: "btcidr", Last: 1_000_000_000, VolumeQuote: 50_000_000_000},
		{Pair: "ethidr", Last: 50_000_000, VolumeQuote: 20_000_000_000},
		{Pair: "dogeidr", Last: 2_500, VolumeQuote: 900_000_000},
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	srv := httpapi.New(quietLogger)
	w := do(t, srv.Routes(), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := httpapi.New(quietLogger)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	srv := httpapi.New(quietLogger)
	w := do(t, srv.Routes(), http.MethodOptions, "/api/simulate", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutesDisabledWithoutDependencies(t *testing.T) {
	h := httpapi.New(quietLogger).Routes()
	for _, path := range []string{"/api/signal", "/api/series", "/api/history", "/api/market", "/metrics"} {
		w := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestSignal_NoObservationYet(t *testing.T) {
	srv := httpapi.New(quietLogger, httpapi.WithSignals(&fakeSignals{}))
	w := do(t, srv.Routes(), http.MethodGet, "/api/signal", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "no observation yet", body["error"])
}

func TestSignal_ReturnsLatestObservation(t *testing.T) {
	rsi := 42.5
	src := &fakeSignals{
		ok: true,
		obs: domain.Observation{
			ID:     "obs-1",
			Pair:   "btcidr",
			Ticker: domain.Ticker{Pair: "btcidr", Last: 1_000_000_000},
			Report: domain.SignalReport{RSI14: &rsi, Trend: domain.TrendUp, PumpDump: domain.NoSignal},
		},
	}
	srv := httpapi.New(quietLogger, httpapi.WithSignals(src))
	w := do(t, srv.Routes(), http.MethodGet, "/api/signal", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Observation
	decode(t, w, &got)
	assert.Equal(t, "obs-1", got.ID)
	require.NotNil(t, got.Report.RSI14)
	assert.InDelta(t, 42.5, *got.Report.RSI14, 1e-9)
	assert.Equal(t, domain.TrendUp, got.Report.Trend)
}

func TestSeries(t *testing.T) {
	src := &fakeSignals{series: domain.PriceSeries{1, 2, 3}}
	srv := httpapi.New(quietLogger, httpapi.WithSignals(src))
	w := do(t, srv.Routes(), http.MethodGet, "/api/series", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Pair   string    `json:"pair"`
		Prices []float64 `json:"prices"`
	}
	decode(t, w, &body)
	assert.Equal(t, "btcidr", body.Pair)
	assert.Equal(t, []float64{1, 2, 3}, body.Prices)
}

func TestHistory(t *testing.T) {
	hist := &fakeHistory{obs: []domain.Observation{{ID: "a", Pair: "btcidr"}}}
	srv := httpapi.New(quietLogger, httpapi.WithSignals(&fakeSignals{}), httpapi.WithHistory(hist))
	h := srv.Routes()

	w := do(t, h, http.MethodGet, "/api/history?hours=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []domain.Observation
	decode(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "btcidr", hist.pair)
	assert.InDelta(t, (2 * time.Hour).Seconds(), hist.to.Sub(hist.from).Seconds(), 1)

	w = do(t, h, http.MethodGet, "/api/history?hours=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	hist.err = errors.New("db down")
	w = do(t, h, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHistory_EmptyIsArray(t *testing.T) {
	srv := httpapi.New(quietLogger, httpapi.WithSignals(&fakeSignals{}), httpapi.WithHistory(&fakeHistory{}))
	w := do(t, srv.Routes(), http.MethodGet, "/api/history", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestSimulate(t *testing.T) {
	srv := httpapi.New(quietLogger)
	body := `{
		"opening_balance": 1000000,
		"allocation_percent": "50",
		"buy_price": 100,
		"sell_price": 110,
		"buy_method": "limit",
		"sell_method": "limit",
		"cycles": 1
	}`
	w := do(t, srv.Routes(), http.MethodPost, "/api/simulate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Margin            string `json:"margin"`
		InitialAllocation string `json:"initial_allocation"`
		Cycles            []struct {
			Index         int    `json:"index"`
			EndingBalance string `json:"ending_balance"`
		} `json:"cycles"`
		Summary struct {
			TotalProfit string `json:"total_profit"`
		} `json:"summary"`
	}
	decode(t, w, &got)
	assert.Equal(t, "10", got.Margin)
	assert.Equal(t, "500000", got.InitialAllocation)
	require.Len(t, got.Cycles, 1)
	assert.Equal(t, 1, got.Cycles[0].Index)
	assert.Equal(t, "1048119", got.Cycles[0].EndingBalance)
	assert.Equal(t, "48119", got.Summary.TotalProfit)
}

func TestSimulate_DefaultsAndFeeOverride(t *testing.T) {
	srv := httpapi.New(quietLogger)
	body := `{"opening_balance":1000000,"buy_price":100,"sell_price":110,"buy_fee_percent":0,"sell_fee_percent":0,"cycles":2}`
	w := do(t, srv.Routes(), http.MethodPost, "/api/simulate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Cycles []struct {
			EndingBalance string `json:"ending_balance"`
		} `json:"cycles"`
	}
	decode(t, w, &got)
	require.Len(t, got.Cycles, 2)
	assert.Equal(t, "1100000", got.Cycles[0].EndingBalance)
	assert.Equal(t, "1210000", got.Cycles[1].EndingBalance)
}

func TestSimulate_BadRequests(t *testing.T) {
	cases := map[string]string{
		"malformed JSON":   `{"opening_balance":`,
		"zero cycles":      `{"opening_balance":1000,"buy_price":1,"sell_price":2,"cycles":0}`,
		"zero balance":     `{"opening_balance":0,"buy_price":1,"sell_price":2,"cycles":1}`,
		"unknown method":   `{"opening_balance":1000,"buy_price":1,"sell_price":2,"cycles":1,"buy_method":"stop"}`,
		"allocation > 100": `{"opening_balance":1000,"allocation_percent":101,"buy_price":1,"sell_price":2,"cycles":1}`,
	}
	h := httpapi.New(quietLogger).Routes()
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/simulate", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestMarket(t *testing.T) {
	screener := monitor.NewScreener(&fakeTickers{tickers: marketTickers()})
	rules := []domain.HighlightRule{{Field: domain.FieldVolumeQuote, Condition: ">", Value: 10_000_000_000, Label: "hot"}}
	srv := httpapi.New(quietLogger, httpapi.WithScreener(screener), httpapi.WithHighlights(rules))
	h := srv.Routes()

	w := do(t, h, http.MethodGet, "/api/market?min_price=10000&order=asc", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Tickers  []domain.Ticker `json:"tickers"`
		Overview struct {
			Count int `json:"count"`
		} `json:"overview"`
		Highlights map[string]string `json:"highlights"`
	}
	decode(t, w, &got)
	require.Len(t, got.Tickers, 2)
	assert.Equal(t, "ethidr", got.Tickers[0].Pair)
	assert.Equal(t, "btcidr", got.Tickers[1].Pair)
	assert.Equal(t, 3, got.Overview.Count)
	assert.Equal(t, map[string]string{"btcidr": "hot", "ethidr": "hot"}, got.Highlights)
}

func TestMarket_FavoritesAndLimit(t *testing.T) {
	screener := monitor.NewScreener(&fakeTickers{tickers: marketTickers()})
	h := httpapi.New(quietLogger, httpapi.WithScreener(screener)).Routes()

	w := do(t, h, http.MethodGet, "/api/market?favorites=doge_idr,eth_idr&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Tickers []domain.Ticker `json:"tickers"`
	}
	decode(t, w, &got)
	require.Len(t, got.Tickers, 1)
	assert.Equal(t, "ethidr", got.Tickers[0].Pair)
}

func TestMarket_FavoritesAcceptExchangeSpelling(t *testing.T) {
	screener := monitor.NewScreener(&fakeTickers{tickers: marketTickers()})
	h := httpapi.New(quietLogger, httpapi.WithScreener(screener)).Routes()

	w := do(t, h, http.MethodGet, "/api/market?favorites=BTC_IDR", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Tickers []domain.Ticker `json:"tickers"`
	}
	decode(t, w, &got)
	require.Len(t, got.Tickers, 1)
	assert.Equal(t, "btcidr", got.Tickers[0].Pair)
}

func TestMarket_BadQuery(t *testing.T) {
	screener := monitor.NewScreener(&fakeTickers{tickers: marketTickers()})
	h := httpapi.New(quietLogger, httpapi.WithScreener(screener)).Routes()

	for _, q := range []string{"min_price=abc", "order=sideways", "limit=-1", "sort=nope"} {
		w := do(t, h, http.MethodGet, "/api/market?"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestMarket_UpstreamError(t *testing.T) {
	screener := monitor.NewScreener(&fakeTickers{err: errors.New("exchange down")})
	h := httpapi.New(quietLogger, httpapi.WithScreener(screener)).Routes()

	w := do(t, h, http.MethodGet, "/api/market", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestMetricsRoute(t *testing.T) {
	h := httpapi.New(quietLogger, httpapi.WithMetrics(promhttp.Handler())).Routes()
	w := do(t, h, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
}
