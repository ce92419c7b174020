package lob

import "testing"

func TestBookInsertAndBestLevel(t *testing.T) {
	b := NewBook()
	b.Insert(Buy, 10000, "b1", 5)
	b.Insert(Buy, 10100, "b2", 3)
	b.Insert(Sell, 10200, "s1", 2)
	b.Insert(Sell, 10300, "s2", 2)

	if best := b.BestLevel(Buy); best == nil || best.Ticks != 10100 {
		t.Errorf("best bid should be the highest price, got %+v", best)
	}
	if best := b.BestLevel(Sell); best == nil || best.Ticks != 10200 {
		t.Errorf("best ask should be the lowest price, got %+v", best)
	}
}

func TestBookBestLevelEmptySide(t *testing.T) {
	b := NewBook()
	if b.BestLevel(Buy) != nil || b.BestLevel(Sell) != nil {
		t.Error("empty sides must report no best level")
	}
}

func TestBookRemoveDropsEmptyLevel(t *testing.T) {
	b := NewBook()
	b.Insert(Buy, 10000, "b1", 5)
	b.Insert(Buy, 10000, "b2", 5)

	if !b.Remove(Buy, 10000, "b1") {
		t.Fatal("remove failed")
	}
	if b.Levels(Buy) != 1 {
		t.Error("level with remaining orders must persist")
	}

	if !b.Remove(Buy, 10000, "b2") {
		t.Fatal("remove failed")
	}
	if b.Levels(Buy) != 0 {
		t.Error("emptied level must be dropped from the store")
	}
}

func TestBookRemoveUnknown(t *testing.T) {
	b := NewBook()
	b.Insert(Buy, 10000, "b1", 5)

	if b.Remove(Buy, 10000, "ghost") {
		t.Error("removing an id not at the level must return false")
	}
	if b.Remove(Buy, 99999, "b1") {
		t.Error("removing at a price with no level must return false")
	}
	if b.Remove(Sell, 10000, "b1") {
		t.Error("removing on the wrong side must return false")
	}
}

func TestBookWalkPriorityOrder(t *testing.T) {
	b := NewBook()
	for _, ticks := range []int64{10000, 10200, 10100} {
		b.Insert(Buy, ticks, "x", 1)
		b.Insert(Sell, ticks, "y", 1)
	}

	var bids []int64
	b.Walk(Buy, func(lvl *PriceLevel) bool {
		bids = append(bids, lvl.Ticks)
		return true
	})
	if bids[0] != 10200 || bids[1] != 10100 || bids[2] != 10000 {
		t.Errorf("bids must walk descending: %v", bids)
	}

	var asks []int64
	b.Walk(Sell, func(lvl *PriceLevel) bool {
		asks = append(asks, lvl.Ticks)
		return true
	})
	if asks[0] != 10000 || asks[1] != 10100 || asks[2] != 10200 {
		t.Errorf("asks must walk ascending: %v", asks)
	}
}

func TestPriceLevelFIFO(t *testing.T) {
	lvl := &PriceLevel{Ticks: 10000}
	lvl.Enqueue("a", 1)
	lvl.Enqueue("b", 2)
	lvl.Enqueue("c", 3)

	if lvl.TotalQty != 6 || lvl.OrderCount != 3 {
		t.Fatalf("aggregate qty=%d count=%d", lvl.TotalQty, lvl.OrderCount)
	}
	if lvl.Head().orderID != "a" {
		t.Error("head must be the earliest insertion")
	}

	// Unlink from the middle, then the head.
	lvl.unlink(lvl.find("b"))
	if lvl.TotalQty != 4 || lvl.find("b") != nil {
		t.Errorf("after mid unlink qty=%d", lvl.TotalQty)
	}
	lvl.unlink(lvl.Head())
	if lvl.Head().orderID != "c" {
		t.Error("head must advance in insertion order")
	}

	lvl.reduce(lvl.Head(), 1)
	if lvl.Head().qty != 2 || lvl.TotalQty != 2 {
		t.Errorf("reduce left qty=%d total=%d", lvl.Head().qty, lvl.TotalQty)
	}

	lvl.unlink(lvl.Head())
	if !lvl.Empty() {
		t.Error("level should be empty")
	}
}
