package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime la observación en el modo configurado.
func (c *Console) Notify(_ context.Context, obs domain.Observation) error {
	if c.table {
		c.printFull(obs)
	} else {
		c.printCompact(obs)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(obs domain.Observation) {
	r := obs.Report
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s %s", obs.ObservedAt.Local().Format("15:04:05"),
		strings.ToUpper(obs.Pair), formatIDR(obs.Ticker.Last))
	fmt.Fprintf(&sb, " | rsi %s | vol %s | rr %s | %s",
		formatOptional(r.RSI14), formatPercent(r.VolatilityPercent), formatOptional(r.RiskRewardRatio), r.Trend)
	if r.PumpDump != domain.NoSignal {
		fmt.Fprintf(&sb, " | %s", signalLabel(r.PumpDump))
	}
	if r.RecommendedBuy != nil {
		fmt.Fprintf(&sb, " | buy@%s", formatIDR(*r.RecommendedBuy))
	}
	if r.RecommendedSell != nil {
		fmt.Fprintf(&sb, " | sell@%s", formatIDR(*r.RecommendedSell))
	}
	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime el informe completo como tabla clave/valor.
func (c *Console) printFull(obs domain.Observation) {
	r := obs.Report
	t := obs.Ticker

	fmt.Fprintf(c.out, "\n[%s] %s — %d observations\n",
		obs.ObservedAt.Local().Format("15:04:05"), strings.ToUpper(obs.Pair), r.HistoryLen)

	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value")
	rows := [][2]string{
		{"Last", formatIDR(t.Last)},
		{"High / Low", formatIDR(t.High) + " / " + formatIDR(t.Low)},
		{"Bid / Ask", formatIDR(t.Buy) + " / " + formatIDR(t.Sell)},
		{"Volume (IDR)", formatIDR(t.VolumeQuote)},
		{"Volatility", formatPercent(r.VolatilityPercent)},
		{"Support", formatIDR(r.Support)},
		{"Resistance", formatIDR(r.Resistance)},
		{"Risk/Reward", formatOptional(r.RiskRewardRatio)},
		{"MA50", formatIDR(r.MA50)},
		{"MA200", formatIDR(r.MA200)},
		{"RSI14", formatOptional(r.RSI14)},
		{"Buy depth", fmt.Sprintf("%.4f", r.BuyDepthTotal)},
		{"Sell depth", fmt.Sprintf("%.4f", r.SellDepthTotal)},
		{"Book mid / spread", formatIDR(r.BookMidpoint) + " / " + formatIDR(r.BookSpread)},
		{"Trend", string(r.Trend)},
		{"Pump/Dump", signalLabel(r.PumpDump)},
		{"Recommended buy", formatOptionalIDR(r.RecommendedBuy)},
		{"Recommended sell", formatOptionalIDR(r.RecommendedSell)},
	}
	for _, row := range rows {
		table.Append(row[0], row[1])
	}
	table.Render()
}

func signalLabel(s domain.PumpDump) string {
	switch s {
	case domain.PumpLikely:
		return "PUMP likely"
	case domain.DumpLikely:
		return "DUMP likely"
	default:
		return "no signal"
	}
}
