package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/adapters/notify"
	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func makeObs() domain.Observation {
	return domain.Observation{
		ID:         "obs-1",
		Pair:       "btcidr",
		ObservedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Ticker: domain.Ticker{
			Pair: "btcidr", High: 1_100_000_000, Low: 1_000_000_000, Last: 1_050_000_000,
			Buy: 1_049_000_000, Sell: 1_051_000_000, VolumeQuote: 13_125_000_000,
		},
		Report: domain.SignalReport{
			VolatilityPercent: f(10),
			Support:           1_000_000_000,
			Resistance:        1_100_000_000,
			RiskRewardRatio:   f(1.0408),
			MA50:              1_040_000_000,
			MA200:             1_020_000_000,
			BuyDepthTotal:     12.5,
			SellDepthTotal:    3.25,
			Trend:             domain.TrendUp,
			PumpDump:          domain.PumpLikely,
			RecommendedBuy:    f(1_000_000_000),
			HistoryLen:        214,
		},
	}
}

func TestConsole_Notify_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, n.Notify(context.Background(), makeObs()))

	out := buf.String()
	assert.Contains(t, out, "BTCIDR")
	assert.Contains(t, out, "Rp 1.050.000.000")
	assert.Contains(t, out, "rsi not enough data")
	assert.Contains(t, out, "vol 10.00%")
	assert.Contains(t, out, "PUMP likely")
	assert.Contains(t, out, "buy@Rp 1.000.000.000")
	assert.NotContains(t, out, "sell@")
}

func TestConsole_Notify_Table(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	obs := makeObs()
	obs.Report.RSI14 = f(27.456)
	require.NoError(t, n.Notify(context.Background(), obs))

	out := buf.String()
	assert.Contains(t, out, "214 observations")
	assert.Contains(t, out, "27.46")
	assert.Contains(t, out, "Rp 1.100.000.000")
	assert.Contains(t, out, "12.5000")
	assert.Contains(t, out, "up")
}

func TestConsole_PrintSimulation(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	cfg := domain.SimulationConfig{
		OpeningBalance:    decimal.NewFromInt(1_000_000),
		AllocationPercent: decimal.NewFromInt(100),
		BuyPrice:          decimal.NewFromInt(100),
		SellPrice:         decimal.NewFromInt(110),
		BuyFeePercent:     decimal.Zero,
		SellFeePercent:    decimal.Zero,
		CycleCount:        2,
	}
	cycles, summary, err := domain.Simulate(cfg)
	require.NoError(t, err)

	n.PrintSimulation(cfg, cycles, summary)

	out := buf.String()
	assert.Contains(t, out, "2 cycles")
	assert.Contains(t, out, "Rp 1.100.000")
	assert.Contains(t, out, "Rp 1.210.000")
	assert.Contains(t, out, "Total profit Rp 210.000")
	assert.Contains(t, out, "10000.00000000")
}

func TestConsole_PrintMarket(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	tickers := []domain.Ticker{
		{Pair: "btcidr", Last: 1_050_000_000, VolumeQuote: 13_000_000_000},
		{Pair: "dogeidr", Last: 2_500, VolumeQuote: 900_000_000},
	}
	rules := []domain.HighlightRule{{Field: domain.FieldVolumeQuote, Condition: ">", Value: 1e10, Label: "HOT"}}

	n.PrintMarket(tickers, domain.Overview(tickers), rules)

	out := buf.String()
	assert.Contains(t, out, "DOGEIDR")
	assert.Contains(t, out, "HOT")
	assert.Contains(t, out, "2 markets")
	assert.Contains(t, out, "lowest DOGEIDR Rp 2.500")
}

func TestConsole_PrintMarket_Empty(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).PrintMarket(nil, domain.Overview(nil), nil)
	assert.Contains(t, buf.String(), "no markets match")
}

func TestPrintSimulation_FractionalProfitMatchesEndingBalance(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	cfg, err := domain.NewSimulationConfig(
		decimal.NewFromInt(1_000_000), decimal.NewFromInt(50),
		decimal.NewFromInt(100), decimal.NewFromInt(110),
		domain.LimitOrder, domain.LimitOrder, 1,
	)
	require.NoError(t, err)
	cycles, summary, err := domain.Simulate(cfg)
	require.NoError(t, err)

	n.PrintSimulation(cfg, cycles, summary)

	out := buf.String()
	assert.Contains(t, out, "Rp 48.119,73")
	assert.Contains(t, out, "Rp 1.048.119")
	assert.Contains(t, out, "Total profit Rp 48.119 ")
	assert.NotContains(t, out, "Rp 48.120")
	assert.Contains(t, out, "Rp 1.155,50")
}
