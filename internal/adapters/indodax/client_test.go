package indodax_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/adapters/indodax"
	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickerJSON = `{"ticker":{"high":"1100000000","low":"1000000000","vol_btc":"12.5","vol_idr":"13125000000","last":"1050000000","buy":"1049000000","sell":"1051000000","server_time":1700000000,"name":"Bitcoin"}}`

const tickersJSON = `{"tickers":{
  "eth_idr":{"high":"52000000","low":"50000000","vol_eth":"100","vol_idr":"5100000000","last":"51000000","buy":"50900000","sell":"51100000","server_time":1700000000},
  "btc_idr":{"high":"1100000000","low":"1000000000","vol_btc":"12.5","vol_idr":"13125000000","last":"1050000000","buy":"1049000000","sell":"1051000000","server_time":1700000000}
}}`

const depthJSON = `{"buy":[[1049000000,"0.5"],["1048000000","1.25"],[1047000000,"0"]],"sell":[[1052000000,"0.3"],[1051000000,"0.2"]]}`

const historyJSON = `[
  {"Time":1700003600,"Open":1040,"High":1060,"Low":1030,"Close":1050,"Volume":"2.5"},
  {"Time":1700000000,"Open":1000,"High":1045,"Low":990,"Close":1040,"Volume":"1.5"}
]`

func newTestClient(srv *httptest.Server, opts ...indodax.Option) *indodax.Client {
	opts = append([]indodax.Option{indodax.WithRetryWait(time.Millisecond)}, opts...)
	return indodax.NewClient(srv.URL, opts...)
}

func jsonHandler(t *testing.T, path, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestFetchTicker_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/ticker/btcidr", tickerJSON))
	defer srv.Close()

	tk, err := newTestClient(srv).FetchTicker(context.Background(), "BTC_IDR")
	require.NoError(t, err)

	assert.Equal(t, "btcidr", tk.Pair)
	assert.Equal(t, "Bitcoin", tk.Name)
	assert.InDelta(t, 1_100_000_000, tk.High, 0.1)
	assert.InDelta(t, 1_000_000_000, tk.Low, 0.1)
	assert.InDelta(t, 1_050_000_000, tk.Last, 0.1)
	assert.InDelta(t, 1_049_000_000, tk.Buy, 0.1)
	assert.InDelta(t, 1_051_000_000, tk.Sell, 0.1)
	assert.InDelta(t, 12.5, tk.VolumeBase, 1e-9)
	assert.InDelta(t, 13_125_000_000, tk.VolumeQuote, 0.1)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), tk.ServerTime)
}

func TestFetchTicker_APIErrorBody(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/ticker/nopeidr",
		`{"error":"invalid_pair","error_description":"Invalid Pair"}`))
	defer srv.Close()

	_, err := newTestClient(srv).FetchTicker(context.Background(), "nopeidr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_pair")
}

func TestFetchTickers_SortedByPair(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/tickers", tickersJSON))
	defer srv.Close()

	tickers, err := newTestClient(srv).FetchTickers(context.Background())
	require.NoError(t, err)
	require.Len(t, tickers, 2)
	assert.Equal(t, "btcidr", tickers[0].Pair)
	assert.Equal(t, "ethidr", tickers[1].Pair)
	assert.InDelta(t, 100.0, tickers[1].VolumeBase, 1e-9)
}

func TestFetchOrderBook_MixedLevelFormats(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/depth/btcidr", depthJSON))
	defer srv.Close()

	book, err := newTestClient(srv).FetchOrderBook(context.Background(), "btcidr")
	require.NoError(t, err)

	require.Len(t, book.Bids, 2, "zero-size level dropped")
	require.Len(t, book.Asks, 2)
	assert.Equal(t, domain.BookEntry{Price: 1_049_000_000, Size: 0.5}, book.Bids[0])
	assert.Equal(t, 1_051_000_000.0, book.Asks[0].Price, "asks ascending")

	d := book.DepthTotals()
	assert.InDelta(t, 1.75, d.BuyTotal, 1e-9)
	assert.InDelta(t, 0.5, d.SellTotal, 1e-9)
}

func TestFetchOrderBook_CustomDepthURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/proxy/depth", r.URL.Path)
		assert.Equal(t, "ethidr", r.URL.Query().Get("coin"))
		w.Write([]byte(depthJSON))
	}))
	defer srv.Close()

	client := newTestClient(srv, indodax.WithDepthURL(srv.URL+"/proxy/depth?coin=%s"))
	book, err := client.FetchOrderBook(context.Background(), "eth_idr")
	require.NoError(t, err)
	assert.Equal(t, "ethidr", book.Pair)
}

func TestFetchCandles_QueryAndOrder(t *testing.T) {
	from := time.Unix(1699990000, 0)
	to := time.Unix(1700010000, 0)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tradingview/history_v2", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "BTCIDR", q.Get("symbol"))
		assert.Equal(t, "60", q.Get("tf"))
		assert.Equal(t, "1699990000", q.Get("from"))
		assert.Equal(t, "1700010000", q.Get("to"))
		w.Write([]byte(historyJSON))
	}))
	defer srv.Close()

	candles, err := newTestClient(srv).FetchCandles(context.Background(), "btcidr", "60", from, to)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 1040.0, candles[0].Close, "oldest first")
	assert.Equal(t, 1050.0, candles[1].Close)
	assert.InDelta(t, 2.5, candles[1].Volume, 1e-9)
}

func TestFetchCandles_EmptyRange(t *testing.T) {
	client := indodax.NewClient("http://127.0.0.1:1")
	now := time.Now()
	_, err := client.FetchCandles(context.Background(), "btcidr", "60", now, now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(tickerJSON))
	}))
	defer srv.Close()

	tk, err := newTestClient(srv).FetchTicker(context.Background(), "btcidr")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.InDelta(t, 1_050_000_000, tk.Last, 0.1)
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchTicker(context.Background(), "btcidr")
	require.Error(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestClient_RateLimitedLastAttemptReturnsWithoutBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	// backoff 100+200+400ms entre intentos; un sleep más tras el último serían +800ms
	client := indodax.NewClient(srv.URL, indodax.WithRetryWait(100*time.Millisecond))
	start := time.Now()
	_, err := client.FetchTicker(context.Background(), "btcidr")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(4), calls.Load())
	assert.Less(t, elapsed, 1300*time.Millisecond)
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchOrderBook(context.Background(), "btcidr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}
