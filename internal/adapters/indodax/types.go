package indodax

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DTOs raw de la API pública de Indodax. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// flexNumber acepta números JSON tanto sin comillas como en string:
// la API mezcla ambos formatos incluso dentro del mismo nivel del book.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*n = flexNumber(v)
	return nil
}

// apiError es el cuerpo que devuelve la API con status 200 cuando el par no existe.
type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e apiError) err() error {
	if e.Error == "" {
		return nil
	}
	if e.ErrorDescription != "" {
		return fmt.Errorf("api error %s: %s", e.Error, e.ErrorDescription)
	}
	return fmt.Errorf("api error %s", e.Error)
}

// tickerRaw es el objeto ticker. Las claves de volumen dependen del par
// (vol_btc, vol_eth...), así que se decodifica como mapa.
type tickerRaw map[string]json.RawMessage

// tickerResponse es la respuesta de GET /api/ticker/{pair}.
type tickerResponse struct {
	apiError
	Ticker tickerRaw `json:"ticker"`
}

// tickersResponse es la respuesta de GET /api/tickers, indexada por "btc_idr".
type tickersResponse struct {
	apiError
	Tickers map[string]tickerRaw `json:"tickers"`
}

// depthResponse es la respuesta de GET /api/depth/{pair}: niveles [precio, cantidad].
type depthResponse struct {
	apiError
	Buy  [][2]flexNumber `json:"buy"`
	Sell [][2]flexNumber `json:"sell"`
}

// candleRaw es un elemento de GET /tradingview/history_v2.
type candleRaw struct {
	Time   int64      `json:"Time"`
	Open   flexNumber `json:"Open"`
	High   flexNumber `json:"High"`
	Low    flexNumber `json:"Low"`
	Close  flexNumber `json:"Close"`
	Volume flexNumber `json:"Volume"`
}
