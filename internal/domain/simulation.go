package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FeeMethod es el tipo de orden con el que se ejecuta una pierna del ciclo.
type FeeMethod int

const (
	LimitOrder FeeMethod = iota
	MarketOrder
)

func (m FeeMethod) String() string {
	switch m {
	case LimitOrder:
		return "limitOrder"
	case MarketOrder:
		return "marketOrder"
	default:
		return "unknown"
	}
}

// ParseFeeMethod acepta "limit", "limitOrder", "market" o "marketOrder" (case-insensitive).
func ParseFeeMethod(s string) (FeeMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "limit", "limitorder":
		return LimitOrder, nil
	case "market", "marketorder":
		return MarketOrder, nil
	}
	return 0, fmt.Errorf("domain.ParseFeeMethod: %q: %w", s, ErrInvalidInput)
}

// FeeSchedule contiene los porcentajes de comisión de compra y venta de un método.
type FeeSchedule struct {
	BuyPercent  decimal.Decimal
	SellPercent decimal.Decimal
}

// feeSchedules son las comisiones por defecto del exchange, en porcentaje.
// Cada pierna se resuelve por su propio método: la compra nunca mira el
// método de venta y viceversa.
var feeSchedules = map[FeeMethod]FeeSchedule{
	LimitOrder: {
		BuyPercent:  decimal.RequireFromString("0.2311"),
		SellPercent: decimal.RequireFromString("0.3216"),
	},
	MarketOrder: {
		BuyPercent:  decimal.RequireFromString("0.3322"),
		SellPercent: decimal.RequireFromString("0.3222"),
	},
}

// FeeScheduleFor devuelve las comisiones por defecto del método dado.
func FeeScheduleFor(m FeeMethod) (FeeSchedule, error) {
	fs, ok := feeSchedules[m]
	if !ok {
		return FeeSchedule{}, fmt.Errorf("domain.FeeScheduleFor: method %d: %w", m, ErrInvalidInput)
	}
	return fs, nil
}

// AllocationMenu son los porcentajes de asignación que ofrece la UI.
// Simulate acepta cualquier valor en [0, 100].
var AllocationMenu = []int{25, 50, 75, 100}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// SimulationConfig son los parámetros de una simulación DCA multi-ciclo.
// Todos los importes están en moneda quote (IDR).
type SimulationConfig struct {
	OpeningBalance    decimal.Decimal
	AllocationPercent decimal.Decimal
	BuyPrice          decimal.Decimal
	SellPrice         decimal.Decimal
	BuyFeePercent     decimal.Decimal
	SellFeePercent    decimal.Decimal
	CycleCount        int
}

// NewSimulationConfig construye una configuración con las comisiones por
// defecto de los métodos de compra y venta indicados.
func NewSimulationConfig(opening, allocationPct, buyPrice, sellPrice decimal.Decimal, buyMethod, sellMethod FeeMethod, cycles int) (SimulationConfig, error) {
	buyFees, err := FeeScheduleFor(buyMethod)
	if err != nil {
		return SimulationConfig{}, err
	}
	sellFees, err := FeeScheduleFor(sellMethod)
	if err != nil {
		return SimulationConfig{}, err
	}
	return SimulationConfig{
		OpeningBalance:    opening,
		AllocationPercent: allocationPct,
		BuyPrice:          buyPrice,
		SellPrice:         sellPrice,
		BuyFeePercent:     buyFees.BuyPercent,
		SellFeePercent:    sellFees.SellPercent,
		CycleCount:        cycles,
	}, nil
}

// Validate comprueba las precondiciones de Simulate.
func (c SimulationConfig) Validate() error {
	switch {
	case c.OpeningBalance.LessThan(one):
		return fmt.Errorf("opening balance %s must be >= 1: %w", c.OpeningBalance, ErrInvalidInput)
	case c.BuyPrice.LessThan(one):
		return fmt.Errorf("buy price %s must be >= 1: %w", c.BuyPrice, ErrInvalidInput)
	case c.SellPrice.LessThan(one):
		return fmt.Errorf("sell price %s must be >= 1: %w", c.SellPrice, ErrInvalidInput)
	case c.CycleCount < 1:
		return fmt.Errorf("cycle count %d must be >= 1: %w", c.CycleCount, ErrInvalidInput)
	case c.AllocationPercent.IsNegative() || c.AllocationPercent.GreaterThan(hundred):
		return fmt.Errorf("allocation %s%% outside [0, 100]: %w", c.AllocationPercent, ErrInvalidInput)
	case c.BuyFeePercent.IsNegative() || c.SellFeePercent.IsNegative():
		return fmt.Errorf("fee percents must be >= 0: %w", ErrInvalidInput)
	}
	return nil
}

// Margin es la diferencia bruta por unidad entre venta y compra.
func (c SimulationConfig) Margin() decimal.Decimal {
	return c.SellPrice.Sub(c.BuyPrice)
}

// InitialAllocation es el importe que se asignaría en el primer ciclo.
func (c SimulationConfig) InitialAllocation() decimal.Decimal {
	return c.AllocationPercent.Div(hundred).Mul(c.OpeningBalance)
}

// CycleResult es el desglose de un ciclo compra→venta.
type CycleResult struct {
	Index              int             `json:"index"`
	StartingBalance    decimal.Decimal `json:"starting_balance"`
	AllocationPercent  decimal.Decimal `json:"allocation_percent"`
	AllocatedAmount    decimal.Decimal `json:"allocated_amount"`
	BuyFeeAmount       decimal.Decimal `json:"buy_fee_amount"`
	NetBuyAmount       decimal.Decimal `json:"net_buy_amount"`
	AssetUnitsAcquired decimal.Decimal `json:"asset_units_acquired"`
	GrossSellAmount    decimal.Decimal `json:"gross_sell_amount"`
	SellFeeAmount      decimal.Decimal `json:"sell_fee_amount"`
	NetSellAmount      decimal.Decimal `json:"net_sell_amount"`
	NetProfit          decimal.Decimal `json:"net_profit"`
	EndingBalance      decimal.Decimal `json:"ending_balance"`
}

// SimulationSummary agrega el resultado de todos los ciclos.
type SimulationSummary struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	EndingBalance  decimal.Decimal `json:"ending_balance"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	TotalBuyFees   decimal.Decimal `json:"total_buy_fees"`
	TotalSellFees  decimal.Decimal `json:"total_sell_fees"`
}

// Simulate ejecuta CycleCount ciclos de compra-venta encadenados: el balance
// final de un ciclo es el inicial del siguiente. Ambos sumandos del balance
// final se truncan hacia cero antes de sumarse, así que las fracciones del
// beneficio se pierden en cada ciclo.
func Simulate(cfg SimulationConfig) ([]CycleResult, SimulationSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, SimulationSummary{}, fmt.Errorf("domain.Simulate: %w", err)
	}

	allocFrac := cfg.AllocationPercent.Div(hundred)
	buyFeeFrac := cfg.BuyFeePercent.Div(hundred)
	sellFeeFrac := cfg.SellFeePercent.Div(hundred)

	cycles := make([]CycleResult, 0, cfg.CycleCount)
	summary := SimulationSummary{
		OpeningBalance: cfg.OpeningBalance,
		TotalBuyFees:   decimal.Zero,
		TotalSellFees:  decimal.Zero,
	}

	balance := cfg.OpeningBalance
	for i := 1; i <= cfg.CycleCount; i++ {
		allocated := allocFrac.Mul(balance)
		buyFee := allocated.Mul(buyFeeFrac)
		netBuy := allocated.Sub(buyFee)
		units := netBuy.Div(cfg.BuyPrice)
		// se divide al final para no arrastrar el redondeo de units
		gross := netBuy.Mul(cfg.SellPrice).Div(cfg.BuyPrice)
		sellFee := gross.Mul(sellFeeFrac)
		netSell := gross.Sub(sellFee)
		profit := netSell.Sub(netBuy)
		ending := balance.Truncate(0).Add(profit.Truncate(0))

		cycles = append(cycles, CycleResult{
			Index:              i,
			StartingBalance:    balance,
			AllocationPercent:  cfg.AllocationPercent,
			AllocatedAmount:    allocated,
			BuyFeeAmount:       buyFee,
			NetBuyAmount:       netBuy,
			AssetUnitsAcquired: units,
			GrossSellAmount:    gross,
			SellFeeAmount:      sellFee,
			NetSellAmount:      netSell,
			NetProfit:          profit,
			EndingBalance:      ending,
		})

		summary.TotalBuyFees = summary.TotalBuyFees.Add(buyFee)
		summary.TotalSellFees = summary.TotalSellFees.Add(sellFee)
		balance = ending
	}

	summary.EndingBalance = balance
	summary.TotalProfit = balance.Sub(cfg.OpeningBalance)
	return cycles, summary, nil
}
