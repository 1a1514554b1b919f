package main

import (
	"context"
	"flag"
	"strings"

	"github.com/alejandrodnm/cryptodash/config"
	"github.com/alejandrodnm/cryptodash/internal/adapters/indodax"
	"github.com/alejandrodnm/cryptodash/internal/adapters/notify"
	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/alejandrodnm/cryptodash/internal/monitor"
)

type marketFlags struct {
	search    string
	minPrice  float64
	maxPrice  float64
	minVolume float64
	sort      string
	asc       bool
	limit     int
	favorites bool
}

func (f *marketFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.search, "search", "", "market: substring of the pair")
	fs.Float64Var(&f.minPrice, "min-price", 0, "market: minimum last price")
	fs.Float64Var(&f.maxPrice, "max-price", 0, "market: maximum last price")
	fs.Float64Var(&f.minVolume, "min-volume", 0, "market: minimum IDR volume (default from config)")
	fs.StringVar(&f.sort, "sort", string(domain.FieldVolumeQuote), "market: vol_idr | last | buy | sell")
	fs.BoolVar(&f.asc, "asc", false, "market: ascending order")
	fs.IntVar(&f.limit, "limit", 0, "market: max rows (0 = all)")
	fs.BoolVar(&f.favorites, "favorites", false, "market: only pairs listed in market.favorites")
}

func (f marketFlags) screenConfig(mc config.MarketConfig) monitor.ScreenConfig {
	sc := monitor.DefaultScreenConfig()
	sc.Filter = domain.TickerFilter{
		Search:    strings.TrimSpace(f.search),
		MinPrice:  f.minPrice,
		MaxPrice:  f.maxPrice,
		MinVolume: f.minVolume,
	}
	if sc.Filter.MinVolume == 0 {
		sc.Filter.MinVolume = mc.MinVolume
	}
	if f.favorites {
		for _, fav := range mc.Favorites {
			sc.Filter.Favorites = append(sc.Filter.Favorites, indodax.NormalizePair(fav))
		}
	}
	sc.SortField = domain.TickerField(f.sort)
	sc.Descending = !f.asc
	sc.Limit = f.limit
	return sc
}

func runMarket(ctx context.Context, cfg *config.Config, opts options) error {
	screener := monitor.NewScreener(newClient(cfg))
	screen, err := screener.Screen(ctx, opts.market.screenConfig(cfg.Market))
	if err != nil {
		return err
	}
	notify.NewConsole(opts.table).PrintMarket(screen.Tickers, screen.Overview, cfg.Market.Highlights)
	return nil
}
