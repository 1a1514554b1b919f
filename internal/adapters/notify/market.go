package notify

import (
	"fmt"
	"strings"

	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// PrintMarket imprime la vista de mercado con las reglas de resaltado aplicadas.
func (c *Console) PrintMarket(tickers []domain.Ticker, ov domain.MarketOverview, rules []domain.HighlightRule) {
	if len(tickers) == 0 {
		fmt.Fprintln(c.out, "no markets match the current filters")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Pair", "Last", "Bid", "Ask", "Vol IDR", "Flag")
	for _, t := range tickers {
		table.Append(
			strings.ToUpper(t.Pair),
			formatIDR(t.Last),
			formatIDR(t.Buy),
			formatIDR(t.Sell),
			formatIDR(t.VolumeQuote),
			domain.Highlight(t, rules),
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "  %d markets | total volume %s", ov.Count, formatIDR(ov.TotalQuoteVolume))
	if ov.HighestVolume != nil {
		fmt.Fprintf(c.out, " | top volume %s", strings.ToUpper(ov.HighestVolume.Pair))
	}
	if ov.HighestLast != nil && ov.LowestLast != nil {
		fmt.Fprintf(c.out, " | highest %s %s | lowest %s %s",
			strings.ToUpper(ov.HighestLast.Pair), formatIDR(ov.HighestLast.Last),
			strings.ToUpper(ov.LowestLast.Pair), formatIDR(ov.LowestLast.Last))
	}
	fmt.Fprintln(c.out)
}
