package lob

// Ledger is the append-only trade history plus the last-trade cache.
// Fills are recorded in pairs and never mutated or deleted.
type Ledger struct {
	fills []Fill

	lastPrice float64
	lastSize  int64
	hasTrade  bool
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends both sides of a match and refreshes the last-trade cache.
func (l *Ledger) Record(taker, maker Fill) {
	l.fills = append(l.fills, taker, maker)
	l.lastPrice = taker.Price
	l.lastSize = taker.Size
	l.hasTrade = true
}

// ForClient scans the history for one client's fills, in occurrence order.
// Linear on ledger length; acceptable for an append-only history.
func (l *Ledger) ForClient(clientID string) []Fill {
	var out []Fill
	for _, f := range l.fills {
		if f.ClientID == clientID {
			out = append(out, f)
		}
	}
	return out
}

// LastTrade returns the most recent trade price and size, if any.
func (l *Ledger) LastTrade() (price float64, size int64, ok bool) {
	return l.lastPrice, l.lastSize, l.hasTrade
}

// Len returns the total number of fill records (two per match).
func (l *Ledger) Len() int { return len(l.fills) }
