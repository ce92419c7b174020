package lob

// Registry is the authoritative map from order id to order state. It is
// the single source of truth for remaining size and status; price levels
// and the ledger never mutate an Order directly.
type Registry struct {
	orders map[string]*Order
}

func NewRegistry() *Registry {
	return &Registry{orders: make(map[string]*Order)}
}

// Register inserts a new order keyed by its id.
func (r *Registry) Register(o *Order) error {
	if _, exists := r.orders[o.ID]; exists {
		return ErrDuplicateOrderID
	}
	r.orders[o.ID] = o
	return nil
}

// Get returns the live order. Callers outside the engine's critical
// section must copy before exposing it.
func (r *Registry) Get(id string) (*Order, bool) {
	o, ok := r.orders[id]
	return o, ok
}

// UpdateRemaining sets the order's remaining size and derives status:
// Filled at zero, PartiallyFilled when some but not all size has traded,
// otherwise unchanged. This is the only place a trade moves order status.
func (r *Registry) UpdateRemaining(id string, remaining int64) error {
	o, ok := r.orders[id]
	if !ok {
		return ErrUnknownOrderID
	}
	o.RemainingSize = remaining
	switch {
	case remaining == 0:
		o.Status = Filled
	case remaining < o.Size:
		o.Status = PartiallyFilled
	}
	return nil
}

// Cancel marks a non-terminal order canceled.
func (r *Registry) Cancel(id string) error {
	o, ok := r.orders[id]
	if !ok {
		return ErrUnknownOrderID
	}
	if o.Terminal() {
		return ErrInvalidState
	}
	o.Status = Canceled
	return nil
}

// Len returns the number of registered orders, terminal ones included.
func (r *Registry) Len() int { return len(r.orders) }
