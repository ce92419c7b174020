package lob

// LevelView is one aggregated price level in a snapshot.
type LevelView struct {
	Price float64 `json:"price"`
	Size  int64   `json:"size"`
}

// BookSnapshot is a derived, point-in-time L2 view. It is recomputed on
// demand and never aliases live book state.
type BookSnapshot struct {
	Bids      []LevelView `json:"bids"`
	Asks      []LevelView `json:"asks"`
	BestBid   *float64    `json:"best_bid"`
	BestAsk   *float64    `json:"best_ask"`
	Mid       *float64    `json:"mid"`
	Spread    *float64    `json:"spread"`
	Timestamp int64       `json:"timestamp"`
}

// Snapshot aggregates size per price level up to depth levels per side, in
// priority order. Depth is clamped to the configured MaxLevels; zero or
// negative means the full configured depth.
func (e *Engine) Snapshot(depth int) BookSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if depth <= 0 || depth > e.maxLevels {
		depth = e.maxLevels
	}

	snap := BookSnapshot{
		Bids:      e.depthLocked(Buy, depth),
		Asks:      e.depthLocked(Sell, depth),
		Timestamp: e.clock.Now(),
	}
	if bb, ok := e.bestPrice(Buy); ok {
		snap.BestBid = &bb
	}
	if ba, ok := e.bestPrice(Sell); ok {
		snap.BestAsk = &ba
	}
	if mid, ok := e.midLocked(); ok {
		snap.Mid = &mid
	}
	if spread, ok := e.spreadLocked(); ok {
		snap.Spread = &spread
	}
	return snap
}

func (e *Engine) depthLocked(s Side, depth int) []LevelView {
	out := make([]LevelView, 0, depth)
	e.book.Walk(s, func(lvl *PriceLevel) bool {
		out = append(out, LevelView{Price: e.priceFor(lvl.Ticks), Size: lvl.TotalQty})
		return len(out) < depth
	})
	return out
}
