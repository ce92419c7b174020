// Package httpserver adapts OrderService to a JSON HTTP API.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"odin/domain/lob"
	"odin/service"
)

const basePath = "/api/v1"

type Server struct {
	router *mux.Router
	svc    *service.OrderService
	log    *logrus.Logger
}

func New(svc *service.OrderService, log *logrus.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		svc:    svc,
		log:    log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc(basePath+"/orders", s.handleSubmit).Methods(http.MethodPost)
	s.router.HandleFunc(basePath+"/orders/{id}", s.handleGetOrder).Methods(http.MethodGet)
	s.router.HandleFunc(basePath+"/orders/{id}", s.handleCancel).Methods(http.MethodDelete)
	s.router.HandleFunc(basePath+"/book", s.handleBook).Methods(http.MethodGet)
	s.router.HandleFunc(basePath+"/book/best", s.handleBest).Methods(http.MethodGet)
	s.router.HandleFunc(basePath+"/fills", s.handleFills).Methods(http.MethodGet)
}

// -------------------- Wire types --------------------

type submitRequest struct {
	OrderID  string  `json:"order_id"`
	ClientID string  `json:"client_id"`
	Side     string  `json:"side"`
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	Size     int64   `json:"size"`
}

type orderView struct {
	OrderID       string  `json:"order_id"`
	ClientID      string  `json:"client_id"`
	Side          string  `json:"side"`
	Type          string  `json:"type"`
	Price         float64 `json:"price"`
	Size          int64   `json:"size"`
	RemainingSize int64   `json:"remaining_size"`
	Timestamp     int64   `json:"timestamp"`
	Status        string  `json:"status"`
}

type fillView struct {
	TradeID   uint64  `json:"trade_id"`
	OrderID   string  `json:"order_id"`
	ClientID  string  `json:"client_id"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Size      int64   `json:"size"`
	Timestamp int64   `json:"timestamp"`
}

type submitResponse struct {
	Order orderView  `json:"order"`
	Fills []fillView `json:"fills"`
}

type bestResponse struct {
	BestBid *float64 `json:"best_bid"`
	BestAsk *float64 `json:"best_ask"`
	Mid     *float64 `json:"mid"`
	Spread  *float64 `json:"spread"`
}

func toOrderView(o lob.Order) orderView {
	return orderView{
		OrderID:       o.ID,
		ClientID:      o.ClientID,
		Side:          o.Side.String(),
		Type:          o.Type.String(),
		Price:         o.Price,
		Size:          o.Size,
		RemainingSize: o.RemainingSize,
		Timestamp:     o.Timestamp,
		Status:        o.Status.String(),
	}
}

func toFillViews(fills []lob.Fill) []fillView {
	out := make([]fillView, 0, len(fills))
	for _, f := range fills {
		out = append(out, fillView{
			TradeID:   f.TradeID,
			OrderID:   f.OrderID,
			ClientID:  f.ClientID,
			Side:      f.Side.String(),
			Price:     f.Price,
			Size:      f.Size,
			Timestamp: f.Timestamp,
		})
	}
	return out
}

func parseSide(s string) (lob.Side, bool) {
	switch strings.ToUpper(s) {
	case "BUY":
		return lob.Buy, true
	case "SELL":
		return lob.Sell, true
	default:
		return 0, false
	}
}

func parseType(s string) (lob.OrderType, bool) {
	switch strings.ToUpper(s) {
	case "LIMIT":
		return lob.Limit, true
	case "MARKET":
		return lob.Market, true
	default:
		return 0, false
	}
}

// -------------------- Commands --------------------

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	side, ok := parseSide(req.Side)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "side must be BUY or SELL")
		return
	}
	otype, ok := parseType(req.Type)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "type must be LIMIT or MARKET")
		return
	}

	order := &lob.Order{
		ID:       req.OrderID,
		ClientID: req.ClientID,
		Side:     side,
		Type:     otype,
		Price:    req.Price,
		Size:     req.Size,
	}

	fills, err := s.svc.Submit(order)
	if err != nil {
		switch {
		case errors.Is(err, lob.ErrDuplicateOrderID):
			s.writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, lob.ErrInvalidOrder):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	// Re-read through the query path so the response reflects exactly what
	// the submit produced.
	stored, _ := s.svc.Order(order.ID)
	s.writeJSON(w, http.StatusCreated, submitResponse{
		Order: toOrderView(stored),
		Fills: toFillViews(fills),
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	canceled := s.svc.Cancel(id)
	s.writeJSON(w, http.StatusOK, map[string]bool{"canceled": canceled})
}

// -------------------- Queries --------------------

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	o, ok := s.svc.Order(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "order not found")
		return
	}
	s.writeJSON(w, http.StatusOK, toOrderView(o))
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	depth := 0
	if raw := r.URL.Query().Get("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "depth must be an integer")
			return
		}
		depth = parsed
	}
	s.writeJSON(w, http.StatusOK, s.svc.Snapshot(depth))
}

func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	var resp bestResponse
	if bb, ok := s.svc.BestBid(); ok {
		resp.BestBid = &bb
	}
	if ba, ok := s.svc.BestAsk(); ok {
		resp.BestAsk = &ba
	}
	if mid, ok := s.svc.MidPrice(); ok {
		resp.Mid = &mid
	}
	if spread, ok := s.svc.Spread(); ok {
		resp.Spread = &spread
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFills(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		s.writeError(w, http.StatusBadRequest, "client_id query param required")
		return
	}
	s.writeJSON(w, http.StatusOK, toFillViews(s.svc.FillsForClient(clientID)))
}

// -------------------- Helpers --------------------

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
