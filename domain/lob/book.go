package lob

// Book is the price-level store: two independently ordered sides, bids
// walked highest price first and asks lowest price first. It carries no
// lock of its own; the Engine serializes every access.
type Book struct {
	bids *rbTree
	asks *rbTree
}

func NewBook() *Book {
	return &Book{
		bids: newRBTree(),
		asks: newRBTree(),
	}
}

func (b *Book) side(s Side) *rbTree {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

// Insert appends a resting reference to the tail of the level's queue,
// creating the level if absent.
func (b *Book) Insert(s Side, ticks int64, orderID string, qty int64) {
	b.side(s).UpsertLevel(ticks).Enqueue(orderID, qty)
}

// Remove deletes the matching reference from anywhere in the level's queue
// and drops the level if that empties it. Returns false when no such
// reference rests at that price.
func (b *Book) Remove(s Side, ticks int64, orderID string) bool {
	tree := b.side(s)
	lvl := tree.Level(ticks)
	if lvl == nil {
		return false
	}
	e := lvl.find(orderID)
	if e == nil {
		return false
	}
	lvl.unlink(e)
	if lvl.Empty() {
		tree.DeleteLevel(ticks)
	}
	return true
}

// BestLevel returns the side's top of book: highest bid or lowest ask.
// Nil when the side is empty.
func (b *Book) BestLevel(s Side) *PriceLevel {
	if s == Buy {
		return b.bids.Max()
	}
	return b.asks.Min()
}

// DropLevel removes an emptied level so no dangling empty level persists.
func (b *Book) DropLevel(s Side, ticks int64) {
	b.side(s).DeleteLevel(ticks)
}

// Walk visits the side's levels in priority order (bids descending, asks
// ascending) until fn returns false.
func (b *Book) Walk(s Side, fn func(*PriceLevel) bool) {
	if s == Buy {
		b.bids.Descend(fn)
		return
	}
	b.asks.Ascend(fn)
}

// Levels returns how many price levels currently hold resting orders.
func (b *Book) Levels(s Side) int {
	return b.side(s).Len()
}
