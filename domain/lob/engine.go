package lob

import (
	"fmt"
	"math"
	"sync"
)

// Config carries the engine's construction-time parameters.
type Config struct {
	// TickSize is the minimum price increment. Every resting price is
	// rounded to a multiple of it. Must be > 0.
	TickSize float64
	// MaxLevels caps snapshot rendering depth per side. It does not limit
	// how many price levels may actually hold resting orders.
	MaxLevels int
}

const defaultMaxLevels = 20

// Engine is the matching core: registry, price-level store, and ledger
// behind one lock. Submit and Cancel are exclusive critical sections so no
// partial matching state is ever observable; queries take the read side.
type Engine struct {
	mu sync.RWMutex

	tickSize  float64
	maxLevels int

	book     *Book
	registry *Registry
	ledger   *Ledger

	clock  Clock
	trades TradeIDSource
}

// NewEngine builds an engine. A nil clock falls back to the system clock;
// the trade id source is mandatory so fills stay reproducible.
func NewEngine(cfg Config, clock Clock, trades TradeIDSource) (*Engine, error) {
	if cfg.TickSize <= 0 || math.IsNaN(cfg.TickSize) || math.IsInf(cfg.TickSize, 0) {
		return nil, fmt.Errorf("tick size must be > 0, got %v", cfg.TickSize)
	}
	if cfg.MaxLevels <= 0 {
		cfg.MaxLevels = defaultMaxLevels
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if trades == nil {
		return nil, fmt.Errorf("trade id source is required")
	}
	return &Engine{
		tickSize:  cfg.TickSize,
		maxLevels: cfg.MaxLevels,
		book:      NewBook(),
		registry:  NewRegistry(),
		ledger:    NewLedger(),
		clock:     clock,
		trades:    trades,
	}, nil
}

// ticksFor rounds a price to the nearest tick bucket, ties away from zero.
func (e *Engine) ticksFor(price float64) int64 {
	return int64(math.Round(price / e.tickSize))
}

func (e *Engine) priceFor(ticks int64) float64 {
	return float64(ticks) * e.tickSize
}

// Submit runs one order through the matching loop and returns the taker's
// fills. Maker fills land in the ledger only. A rejected submit leaves the
// book exactly as it was.
func (e *Engine) Submit(o *Order) ([]Fill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validate(o); err != nil {
		return nil, err
	}

	o.RemainingSize = o.Size
	o.Status = Pending
	o.Timestamp = e.clock.Now()
	if o.Type == Limit {
		o.priceTicks = e.ticksFor(o.Price)
		o.Price = e.priceFor(o.priceTicks)
	}

	// Registering is the first mutation; everything after it cannot fail.
	if err := e.registry.Register(o); err != nil {
		return nil, err
	}

	fills := e.match(o)

	// Market orders never rest. A market order that found no liquidity
	// stays Pending with nothing on the book.
	if o.Type == Limit && o.RemainingSize > 0 {
		e.book.Insert(o.Side, o.priceTicks, o.ID, o.RemainingSize)
		if o.Status == Pending {
			o.Status = Active
		}
	}
	return fills, nil
}

func validate(o *Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("%w: missing order id", ErrInvalidOrder)
	}
	if o.Size <= 0 {
		return fmt.Errorf("%w: size must be > 0", ErrInvalidOrder)
	}
	if o.Side != Buy && o.Side != Sell {
		return fmt.Errorf("%w: bad side %d", ErrInvalidOrder, o.Side)
	}
	if o.Type != Limit && o.Type != Market {
		return fmt.Errorf("%w: bad type %d", ErrInvalidOrder, o.Type)
	}
	if o.Type == Limit && (o.Price <= 0 || math.IsNaN(o.Price) || math.IsInf(o.Price, 0)) {
		return fmt.Errorf("%w: limit price must be > 0", ErrInvalidOrder)
	}
	return nil
}

// match walks the opposite side's levels in priority order. Limit orders
// trade only while their price crosses the current best opposite level;
// market orders trade until filled or the opposite side is exhausted.
func (e *Engine) match(taker *Order) []Fill {
	var fills []Fill
	opp := opposite(taker.Side)
	for taker.RemainingSize > 0 {
		lvl := e.book.BestLevel(opp)
		if lvl == nil {
			break
		}
		if taker.Type == Limit && !crosses(taker.Side, taker.priceTicks, lvl.Ticks) {
			break
		}
		fills = e.drainLevel(taker, lvl, fills)
		if lvl.Empty() {
			e.book.DropLevel(opp, lvl.Ticks)
		}
	}
	return fills
}

// drainLevel consumes a level's FIFO queue from the head. A partially
// filled maker keeps its queue position with its reduced size, and draining
// stops there since the taker is exhausted.
func (e *Engine) drainLevel(taker *Order, lvl *PriceLevel, fills []Fill) []Fill {
	price := e.priceFor(lvl.Ticks)
	for ent := lvl.Head(); ent != nil && taker.RemainingSize > 0; ent = lvl.Head() {
		maker, ok := e.registry.Get(ent.orderID)
		if !ok {
			// Stale reference; drop it and keep draining.
			lvl.unlink(ent)
			continue
		}

		qty := min(taker.RemainingSize, maker.RemainingSize)
		tradeID := e.trades.Next()
		ts := e.clock.Now()

		takerFill := Fill{
			TradeID:   tradeID,
			OrderID:   taker.ID,
			ClientID:  taker.ClientID,
			Side:      taker.Side,
			Price:     price,
			Size:      qty,
			Timestamp: ts,
		}
		makerFill := Fill{
			TradeID:   tradeID,
			OrderID:   maker.ID,
			ClientID:  maker.ClientID,
			Side:      maker.Side,
			Price:     price,
			Size:      qty,
			Timestamp: ts,
		}
		e.ledger.Record(takerFill, makerFill)
		fills = append(fills, takerFill)

		_ = e.registry.UpdateRemaining(taker.ID, taker.RemainingSize-qty)
		_ = e.registry.UpdateRemaining(maker.ID, maker.RemainingSize-qty)

		if maker.RemainingSize == 0 {
			lvl.unlink(ent)
		} else {
			lvl.reduce(ent, qty)
			break
		}
	}
	return fills
}

// Cancel withdraws a resting order. False when the id is unknown or the
// order is already terminal; a repeated cancel is a no-op.
func (e *Engine) Cancel(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.registry.Get(orderID)
	if !ok {
		return false
	}
	if err := e.registry.Cancel(orderID); err != nil {
		return false
	}
	if o.Type == Limit {
		// An order that never rested (or was fully drained) has no entry;
		// Remove is then a no-op.
		e.book.Remove(o.Side, o.priceTicks, o.ID)
	}
	return true
}

// GetOrder returns a copy of the order's current state, never a reference
// into the live book.
func (e *Engine) GetOrder(orderID string) (Order, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	o, ok := e.registry.Get(orderID)
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// BestBid returns the highest resting bid price.
func (e *Engine) BestBid() (float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bestPrice(Buy)
}

// BestAsk returns the lowest resting ask price.
func (e *Engine) BestAsk() (float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bestPrice(Sell)
}

func (e *Engine) bestPrice(s Side) (float64, bool) {
	lvl := e.book.BestLevel(s)
	if lvl == nil {
		return 0, false
	}
	return e.priceFor(lvl.Ticks), true
}

// MidPrice averages the two bests, falls back to the last trade price when
// a side is empty, and is absent when neither exists.
func (e *Engine) MidPrice() (float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.midLocked()
}

func (e *Engine) midLocked() (float64, bool) {
	bb, hasBid := e.bestPrice(Buy)
	ba, hasAsk := e.bestPrice(Sell)
	if hasBid && hasAsk {
		return (bb + ba) / 2, true
	}
	if price, _, ok := e.ledger.LastTrade(); ok {
		return price, true
	}
	return 0, false
}

// Spread is best ask minus best bid, absent unless both sides exist.
func (e *Engine) Spread() (float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.spreadLocked()
}

func (e *Engine) spreadLocked() (float64, bool) {
	bb, hasBid := e.bestPrice(Buy)
	ba, hasAsk := e.bestPrice(Sell)
	if !hasBid || !hasAsk {
		return 0, false
	}
	return ba - bb, true
}

// LastTrade returns the most recent trade price and size.
func (e *Engine) LastTrade() (float64, int64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.LastTrade()
}

// FillsForClient returns copies of all of a client's fills in occurrence
// order.
func (e *Engine) FillsForClient(clientID string) []Fill {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.ForClient(clientID)
}

func opposite(s Side) Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func crosses(takerSide Side, takerTicks, levelTicks int64) bool {
	if takerSide == Buy {
		return takerTicks >= levelTicks
	}
	return takerTicks <= levelTicks
}

func min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
