package notify

import (
	"fmt"

	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// PrintSimulation imprime el desglose por ciclo y el resumen de una simulación DCA.
func (c *Console) PrintSimulation(cfg domain.SimulationConfig, cycles []domain.CycleResult, summary domain.SimulationSummary) {
	fmt.Fprintf(c.out, "\nDCA simulation: %d cycles, %s%% allocation, buy %s, sell %s (margin %s)\n",
		cfg.CycleCount, cfg.AllocationPercent, formatDecIDR(cfg.BuyPrice), formatDecIDR(cfg.SellPrice), formatDecIDR(cfg.Margin()))
	fmt.Fprintf(c.out, "  fees: buy %s%% / sell %s%% | first allocation %s\n",
		cfg.BuyFeePercent, cfg.SellFeePercent, formatDecIDR(cfg.InitialAllocation()))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Start", "Allocated", "Buy fee", "Net buy", "Units", "Gross sell", "Sell fee", "Net sell", "Profit", "End")
	for _, cy := range cycles {
		table.Append(
			fmt.Sprintf("%d", cy.Index),
			formatDecIDR(cy.StartingBalance),
			formatDecIDR(cy.AllocatedAmount),
			formatDecIDR(cy.BuyFeeAmount),
			formatDecIDR(cy.NetBuyAmount),
			cy.AssetUnitsAcquired.StringFixed(8),
			formatDecIDR(cy.GrossSellAmount),
			formatDecIDR(cy.SellFeeAmount),
			formatDecIDR(cy.NetSellAmount),
			formatDecIDR(cy.NetProfit),
			formatDecIDR(cy.EndingBalance),
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "  Opening %s → Ending %s | Total profit %s | Fees buy %s sell %s\n",
		formatDecIDR(summary.OpeningBalance),
		formatDecIDR(summary.EndingBalance),
		formatDecIDR(summary.TotalProfit),
		formatDecIDR(summary.TotalBuyFees),
		formatDecIDR(summary.TotalSellFees),
	)
}

// formatDecIDR trunca a dos decimales, igual que el balance se trunca a
// enteros, para que beneficio y balance final cuadren en la tabla.
func formatDecIDR(d decimal.Decimal) string {
	d = d.Truncate(2)
	if d.IsInteger() {
		return "Rp " + humanize.FormatFloat("#.###,", d.InexactFloat64())
	}
	return "Rp " + humanize.FormatFloat("#.###,##", d.InexactFloat64())
}
