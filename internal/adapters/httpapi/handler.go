package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/cryptodash/internal/adapters/indodax"
	"github.com/alejandrodnm/cryptodash/internal/domain"
	"github.com/alejandrodnm/cryptodash/internal/monitor"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (s *Server) health(c *gin.Context) {
	body := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if s.signals != nil {
		obs, ok := s.signals.Latest()
		body["pair"] = s.signals.Pair()
		if ok {
			body["last_poll"] = obs.ObservedAt.Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, body)
}

// signal devuelve la última observación del monitor.
func (s *Server) signal(c *gin.Context) {
	obs, ok := s.signals.Latest()
	if !ok {
		s.handleError(c, errors.New("no observation yet"), http.StatusNotFound, "no observation yet")
		return
	}
	c.JSON(http.StatusOK, obs)
}

func (s *Server) series(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pair":   s.signals.Pair(),
		"prices": s.signals.Series(),
	})
}

// observations devuelve las observaciones persistidas de las últimas ?hours= horas (24 por defecto).
func (s *Server) observations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	hours, err := parseFloatQuery(c, "hours", 24)
	if err != nil || hours <= 0 {
		s.handleError(c, fmt.Errorf("invalid hours: %w", domain.ErrInvalidInput), http.StatusBadRequest, "hours must be a positive number")
		return
	}
	to := time.Now()
	from := to.Add(-time.Duration(hours * float64(time.Hour)))

	obs, err := s.history.GetHistory(ctx, s.signals.Pair(), from, to)
	if err != nil {
		s.handleError(c, err, http.StatusInternalServerError, "internal server error")
		return
	}
	if obs == nil {
		obs = []domain.Observation{}
	}
	c.JSON(http.StatusOK, obs)
}

// simulateRequest es el cuerpo de POST /api/simulate. Los importes aceptan
// número o string. Sin fee explícito se usa el del método (limit por defecto).
type simulateRequest struct {
	OpeningBalance    decimal.Decimal  `json:"opening_balance"`
	AllocationPercent *decimal.Decimal `json:"allocation_percent"`
	BuyPrice          decimal.Decimal  `json:"buy_price"`
	SellPrice         decimal.Decimal  `json:"sell_price"`
	BuyMethod         string           `json:"buy_method"`
	SellMethod        string           `json:"sell_method"`
	BuyFeePercent     *decimal.Decimal `json:"buy_fee_percent"`
	SellFeePercent    *decimal.Decimal `json:"sell_fee_percent"`
	Cycles            int              `json:"cycles"`
}

type simulateResponse struct {
	Config            simulationEcho           `json:"config"`
	Margin            decimal.Decimal          `json:"margin"`
	InitialAllocation decimal.Decimal          `json:"initial_allocation"`
	Cycles            []domain.CycleResult     `json:"cycles"`
	Summary           domain.SimulationSummary `json:"summary"`
}

type simulationEcho struct {
	OpeningBalance    decimal.Decimal `json:"opening_balance"`
	AllocationPercent decimal.Decimal `json:"allocation_percent"`
	BuyPrice          decimal.Decimal `json:"buy_price"`
	SellPrice         decimal.Decimal `json:"sell_price"`
	BuyFeePercent     decimal.Decimal `json:"buy_fee_percent"`
	SellFeePercent    decimal.Decimal `json:"sell_fee_percent"`
	Cycles            int             `json:"cycles"`
}

func (s *Server) simulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, err, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cfg, err := req.toConfig()
	if err != nil {
		s.handleError(c, err, http.StatusBadRequest, err.Error())
		return
	}

	cycles, summary, err := domain.Simulate(cfg)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		s.handleError(c, err, status, err.Error())
		return
	}

	c.JSON(http.StatusOK, simulateResponse{
		Config: simulationEcho{
			OpeningBalance:    cfg.OpeningBalance,
			AllocationPercent: cfg.AllocationPercent,
			BuyPrice:          cfg.BuyPrice,
			SellPrice:         cfg.SellPrice,
			BuyFeePercent:     cfg.BuyFeePercent,
			SellFeePercent:    cfg.SellFeePercent,
			Cycles:            cfg.CycleCount,
		},
		Margin:            cfg.Margin(),
		InitialAllocation: cfg.InitialAllocation(),
		Cycles:            cycles,
		Summary:           summary,
	})
}

func (r simulateRequest) toConfig() (domain.SimulationConfig, error) {
	buyMethod, err := parseMethod(r.BuyMethod)
	if err != nil {
		return domain.SimulationConfig{}, err
	}
	sellMethod, err := parseMethod(r.SellMethod)
	if err != nil {
		return domain.SimulationConfig{}, err
	}

	alloc := decimal.NewFromInt(100)
	if r.AllocationPercent != nil {
		alloc = *r.AllocationPercent
	}

	cfg, err := domain.NewSimulationConfig(r.OpeningBalance, alloc, r.BuyPrice, r.SellPrice, buyMethod, sellMethod, r.Cycles)
	if err != nil {
		return domain.SimulationConfig{}, err
	}
	if r.BuyFeePercent != nil {
		cfg.BuyFeePercent = *r.BuyFeePercent
	}
	if r.SellFeePercent != nil {
		cfg.SellFeePercent = *r.SellFeePercent
	}
	return cfg, nil
}

func parseMethod(s string) (domain.FeeMethod, error) {
	if s == "" {
		return domain.LimitOrder, nil
	}
	return domain.ParseFeeMethod(s)
}

type marketResponse struct {
	monitor.Screen
	Highlights map[string]string `json:"highlights"`
}

// market devuelve la vista de mercado filtrada.
// Query: search, min_price, max_price, min_volume, favorites (csv), sort, order=asc|desc, limit.
func (s *Server) market(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	cfg, err := parseScreenQuery(c)
	if err != nil {
		s.handleError(c, err, http.StatusBadRequest, err.Error())
		return
	}

	screen, err := s.screener.Screen(ctx, cfg)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		s.handleError(c, err, status, "market data unavailable")
		return
	}

	hl := make(map[string]string)
	for _, t := range screen.Tickers {
		if label := domain.Highlight(t, s.highlights); label != "" {
			hl[t.Pair] = label
		}
	}
	c.JSON(http.StatusOK, marketResponse{Screen: screen, Highlights: hl})
}

func parseScreenQuery(c *gin.Context) (monitor.ScreenConfig, error) {
	cfg := monitor.DefaultScreenConfig()
	cfg.Filter.Search = c.Query("search")

	var err error
	if cfg.Filter.MinPrice, err = parseFloatQuery(c, "min_price", 0); err != nil {
		return cfg, err
	}
	if cfg.Filter.MaxPrice, err = parseFloatQuery(c, "max_price", 0); err != nil {
		return cfg, err
	}
	if cfg.Filter.MinVolume, err = parseFloatQuery(c, "min_volume", 0); err != nil {
		return cfg, err
	}
	if fav := c.Query("favorites"); fav != "" {
		for _, p := range strings.Split(fav, ",") {
			cfg.Filter.Favorites = append(cfg.Filter.Favorites, indodax.NormalizePair(p))
		}
	}
	if sort := c.Query("sort"); sort != "" {
		cfg.SortField = domain.TickerField(sort)
	}
	switch c.DefaultQuery("order", "desc") {
	case "asc":
		cfg.Descending = false
	case "desc":
		cfg.Descending = true
	default:
		return cfg, fmt.Errorf("order must be asc or desc: %w", domain.ErrInvalidInput)
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid limit %q: %w", v, domain.ErrInvalidInput)
		}
		cfg.Limit = n
	}
	return cfg, nil
}

func parseFloatQuery(c *gin.Context, key string, def float64) (float64, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, domain.ErrInvalidInput)
	}
	return f, nil
}

// handleError registra el error y responde con el mensaje para el usuario.
func (s *Server) handleError(c *gin.Context, err error, status int, userMessage string) {
	requestID := c.GetString(requestIDContextKey)
	s.logger.Warn("api error",
		"request_id", requestID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"err", err,
	)
	c.JSON(status, gin.H{
		"error":      userMessage,
		"request_id": requestID,
	})
}
