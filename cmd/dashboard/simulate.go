package main

import (
	"flag"
	"fmt"

	"github.com/alejandrodnm/cryptodash/config"
	"github.com/alejandrodnm/cryptodash/internal/adapters/notify"
	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/shopspring/decimal"
)

// simulateFlags son los parámetros del simulador DCA. Los importes se leen
// como string para no perder precisión; vacío = valor de config.
type simulateFlags struct {
	balance    string
	alloc      string
	buy        string
	sell       string
	buyMethod  string
	sellMethod string
	buyFee     string
	sellFee    string
	cycles     int
}

func (f *simulateFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.balance, "balance", "", "simulate: opening balance (IDR)")
	fs.StringVar(&f.alloc, "alloc", "", "simulate: allocation percent per cycle (default from config)")
	fs.StringVar(&f.buy, "buy", "", "simulate: buy price per unit")
	fs.StringVar(&f.sell, "sell", "", "simulate: sell price per unit")
	fs.StringVar(&f.buyMethod, "buy-method", "", "simulate: limit|market (default from config)")
	fs.StringVar(&f.sellMethod, "sell-method", "", "simulate: limit|market (default from config)")
	fs.StringVar(&f.buyFee, "buy-fee", "", "simulate: buy fee percent, overrides the method fee")
	fs.StringVar(&f.sellFee, "sell-fee", "", "simulate: sell fee percent, overrides the method fee")
	fs.IntVar(&f.cycles, "cycles", 0, "simulate: number of cycles (default from config)")
}

func runSimulate(cfg *config.Config, opts options) error {
	simCfg, err := opts.sim.build(cfg.Simulator)
	if err != nil {
		return err
	}

	cycles, summary, err := domain.Simulate(simCfg)
	if err != nil {
		return err
	}

	notify.NewConsole(opts.table).PrintSimulation(simCfg, cycles, summary)
	return nil
}

// build combina flags y config en una SimulationConfig.
func (f simulateFlags) build(defaults config.SimulatorConfig) (domain.SimulationConfig, error) {
	balance, err := requiredDecimal("balance", f.balance)
	if err != nil {
		return domain.SimulationConfig{}, err
	}
	buy, err := requiredDecimal("buy", f.buy)
	if err != nil {
		return domain.SimulationConfig{}, err
	}
	sell, err := requiredDecimal("sell", f.sell)
	if err != nil {
		return domain.SimulationConfig{}, err
	}

	alloc := decimal.NewFromFloat(defaults.Allocation())
	if f.alloc != "" {
		if alloc, err = decimal.NewFromString(f.alloc); err != nil {
			return domain.SimulationConfig{}, fmt.Errorf("-alloc %q: %w", f.alloc, domain.ErrInvalidInput)
		}
	}

	buyMethod, err := domain.ParseFeeMethod(firstNonEmpty(f.buyMethod, defaults.BuyMethod))
	if err != nil {
		return domain.SimulationConfig{}, err
	}
	sellMethod, err := domain.ParseFeeMethod(firstNonEmpty(f.sellMethod, defaults.SellMethod))
	if err != nil {
		return domain.SimulationConfig{}, err
	}

	cycles := f.cycles
	if cycles == 0 {
		cycles = defaults.Cycles
	}

	simCfg, err := domain.NewSimulationConfig(balance, alloc, buy, sell, buyMethod, sellMethod, cycles)
	if err != nil {
		return domain.SimulationConfig{}, err
	}
	if f.buyFee != "" {
		if simCfg.BuyFeePercent, err = decimal.NewFromString(f.buyFee); err != nil {
			return domain.SimulationConfig{}, fmt.Errorf("-buy-fee %q: %w", f.buyFee, domain.ErrInvalidInput)
		}
	}
	if f.sellFee != "" {
		if simCfg.SellFeePercent, err = decimal.NewFromString(f.sellFee); err != nil {
			return domain.SimulationConfig{}, fmt.Errorf("-sell-fee %q: %w", f.sellFee, domain.ErrInvalidInput)
		}
	}
	return simCfg, nil
}

func requiredDecimal(name, v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, fmt.Errorf("-%s is required: %w", name, domain.ErrInvalidInput)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("-%s %q: %w", name, v, domain.ErrInvalidInput)
	}
	return d, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
