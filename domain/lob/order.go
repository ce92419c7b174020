package lob

// Side identifies which half of the book an order belongs to.
type Side int

// OrderType selects the matching behavior of a submitted order.
type OrderType int

// Status tracks an order through its lifecycle. Filled and Canceled are
// terminal.
type Status int

const (
	Buy Side = iota
	Sell
)

const (
	Limit OrderType = iota
	Market
)

const (
	// Pending: accepted, nothing has rested or traded yet. A market order
	// that found no liquidity stays Pending forever.
	Pending Status = iota
	// Active: an unfilled remainder rests in the book.
	Active
	PartiallyFilled
	Filled
	Canceled
)

func (s Side) String() string {
	if s == Sell {
		return "SELL"
	}
	return "BUY"
}

func (t OrderType) String() string {
	if t == Market {
		return "MARKET"
	}
	return "LIMIT"
}

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Active:
		return "ACTIVE"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	case Canceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// Order is the canonical mutable order record. The Registry owns the only
// copy that changes; price levels hold just (id, cached size) references.
type Order struct {
	ID            string
	ClientID      string
	Side          Side
	Type          OrderType
	Price         float64 // rounded to the tick grid on submit; ignored for market orders
	Size          int64
	RemainingSize int64
	Timestamp     int64 // unix nanoseconds, assigned by the engine clock on submit
	Status        Status

	// priceTicks is the tick-grid bucket the order rests at. Only meaningful
	// for limit orders after Submit has normalized the price.
	priceTicks int64
}

// Terminal reports whether the order can never change state again.
func (o *Order) Terminal() bool {
	return o.Status == Filled || o.Status == Canceled
}

// Fill is an immutable trade record. Every match produces exactly two fills
// (taker and maker) sharing one TradeID so counterparties can be correlated.
type Fill struct {
	TradeID   uint64
	OrderID   string
	ClientID  string
	Side      Side
	Price     float64 // always the resting (maker) order's price
	Size      int64
	Timestamp int64
}
