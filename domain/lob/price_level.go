package lob

// entry is a price level's reference to a resting order: the id plus a
// cached size. The Registry keeps the canonical remaining size; the cache
// is refreshed or the entry unlinked whenever a trade touches the order.
type entry struct {
	orderID string
	qty     int64
	prev    *entry
	next    *entry
}

// PriceLevel is a strict-FIFO queue of resting order references at one
// price. Insertion order is time priority; nothing ever reorders the queue.
type PriceLevel struct {
	Ticks      int64 // price bucket in tick-size units
	head       *entry
	tail       *entry
	TotalQty   int64
	OrderCount int
}

// Enqueue appends a reference at the tail of the queue.
func (p *PriceLevel) Enqueue(orderID string, qty int64) {
	e := &entry{orderID: orderID, qty: qty}
	if p.head == nil {
		p.head = e
		p.tail = e
	} else {
		p.tail.next = e
		e.prev = p.tail
		p.tail = e
	}
	p.TotalQty += qty
	p.OrderCount++
}

// Head returns the reference with time priority, or nil on an empty level.
func (p *PriceLevel) Head() *entry { return p.head }

// Empty reports whether no references remain. An empty level must not stay
// in the store.
func (p *PriceLevel) Empty() bool { return p.head == nil }

// unlink removes a reference from anywhere in the queue.
func (p *PriceLevel) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		p.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		p.tail = e.prev
	}
	p.TotalQty -= e.qty
	p.OrderCount--
}

// reduce shrinks a reference's cached size after a partial fill. The entry
// keeps its queue position.
func (p *PriceLevel) reduce(e *entry, by int64) {
	e.qty -= by
	p.TotalQty -= by
}

// find walks the queue for the reference with the given id.
func (p *PriceLevel) find(orderID string) *entry {
	for e := p.head; e != nil; e = e.next {
		if e.orderID == orderID {
			return e
		}
	}
	return nil
}
