package service

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"odin/domain/lob"
	"odin/infra/journal"
)

/*
OrderService is the ONLY write entry point into the engine.

All coordination between:
- domain (lob)
- infra (journal)
- logging
happens here. The engine itself stays log-free and storage-free.
*/

type OrderService struct {
	engine  *lob.Engine
	journal *journal.Journal // nil disables journaling (tests)
	log     *logrus.Logger
}

// TradeEvent is the journaled/broadcast representation of one match, taken
// from the taker's side of the fill pair.
type TradeEvent struct {
	V         int     `json:"v"`
	TradeID   uint64  `json:"trade_id"`
	OrderID   string  `json:"order_id"`
	ClientID  string  `json:"client_id"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Size      int64   `json:"size"`
	Timestamp int64   `json:"timestamp"`
}

// NewOrderService wires all dependencies. No globals.
func NewOrderService(engine *lob.Engine, j *journal.Journal, log *logrus.Logger) *OrderService {
	return &OrderService{
		engine:  engine,
		journal: j,
		log:     log,
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Submit runs an order through the engine, journals each resulting trade,
// and returns the taker fills.
func (s *OrderService) Submit(o *lob.Order) ([]lob.Fill, error) {
	fills, err := s.engine.Submit(o)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": safeID(o),
			"err":      err,
		}).Warn("order rejected")
		return nil, err
	}

	for _, f := range fills {
		s.journalFill(f)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":  o.ID,
		"client_id": o.ClientID,
		"side":      o.Side.String(),
		"type":      o.Type.String(),
		"fills":     len(fills),
		"remaining": o.RemainingSize,
		"status":    o.Status.String(),
	}).Info("order accepted")
	return fills, nil
}

// Cancel withdraws a resting order.
func (s *OrderService) Cancel(orderID string) bool {
	ok := s.engine.Cancel(orderID)
	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"canceled": ok,
	}).Info("cancel")
	return ok
}

//
// ──────────────────────────────────────────────────────────
// Queries (read-only pass-throughs)
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) Order(orderID string) (lob.Order, bool) {
	return s.engine.GetOrder(orderID)
}

func (s *OrderService) Snapshot(depth int) lob.BookSnapshot {
	return s.engine.Snapshot(depth)
}

func (s *OrderService) FillsForClient(clientID string) []lob.Fill {
	return s.engine.FillsForClient(clientID)
}

func (s *OrderService) BestBid() (float64, bool)  { return s.engine.BestBid() }
func (s *OrderService) BestAsk() (float64, bool)  { return s.engine.BestAsk() }
func (s *OrderService) MidPrice() (float64, bool) { return s.engine.MidPrice() }
func (s *OrderService) Spread() (float64, bool)   { return s.engine.Spread() }

//
// ──────────────────────────────────────────────────────────
// Journaling
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) journalFill(f lob.Fill) {
	if s.journal == nil {
		return
	}
	payload, err := json.Marshal(TradeEvent{
		V:         1,
		TradeID:   f.TradeID,
		OrderID:   f.OrderID,
		ClientID:  f.ClientID,
		Side:      f.Side.String(),
		Price:     f.Price,
		Size:      f.Size,
		Timestamp: f.Timestamp,
	})
	if err != nil {
		s.log.WithField("trade_id", f.TradeID).WithError(err).Error("encode trade event")
		return
	}
	if err := s.journal.Append(f.TradeID, payload); err != nil {
		s.log.WithField("trade_id", f.TradeID).WithError(err).Error("journal trade event")
	}
}

func safeID(o *lob.Order) string {
	if o == nil {
		return ""
	}
	return o.ID
}
