package domain

// OrderBook es el snapshot de profundidad de un par en un poll.
// El exchange entrega bids de mayor a menor y asks de menor a mayor, pero
// ningún cálculo de este paquete depende de ese orden.
type OrderBook struct {
	Pair string
	Bids []BookEntry
	Asks []BookEntry
}

// BookEntry es un nivel de precio en el orderbook.
type BookEntry struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// Depth son las cantidades totales a cada lado del libro.
type Depth struct {
	BuyTotal  float64 `json:"buy_total"`
	SellTotal float64 `json:"sell_total"`
}

// DepthTotals suma la cantidad de todos los niveles del snapshot, sin ventana top-N.
func (ob OrderBook) DepthTotals() Depth {
	var d Depth
	for _, b := range ob.Bids {
		d.BuyTotal += b.Size
	}
	for _, a := range ob.Asks {
		d.SellTotal += a.Size
	}
	return d
}

// BestBid devuelve el mayor precio de compra.
// Devuelve 0 si el book está vacío.
func (ob OrderBook) BestBid() float64 {
	var best float64
	for _, b := range ob.Bids {
		if b.Price > best {
			best = b.Price
		}
	}
	return best
}

// BestAsk devuelve el menor precio de venta.
// Devuelve 0 si el book está vacío.
func (ob OrderBook) BestAsk() float64 {
	var best float64
	for i, a := range ob.Asks {
		if i == 0 || a.Price < best {
			best = a.Price
		}
	}
	return best
}

// Midpoint devuelve el punto medio entre best bid y best ask.
func (ob OrderBook) Midpoint() float64 {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return (bid + ask) / 2
}

// Spread devuelve el spread del book (ask - bid).
func (ob OrderBook) Spread() float64 {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return ask - bid
}
