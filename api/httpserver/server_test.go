package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"odin/domain/lob"
	"odin/infra/sequence"
	"odin/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine, err := lob.NewEngine(lob.Config{TickSize: 0.01, MaxLevels: 20}, nil, sequence.New(0))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	// nil journal disables journaling for tests.
	return New(service.NewOrderService(engine, nil, log), log)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestSubmitAndMatchOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/orders",
		`{"order_id":"b1","client_id":"alice","side":"BUY","type":"LIMIT","price":100.00,"size":10}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/orders",
		`{"order_id":"s1","client_id":"bob","side":"SELL","type":"LIMIT","price":100.00,"size":4}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}

	var resp struct {
		Order struct {
			Status        string `json:"status"`
			RemainingSize int64  `json:"remaining_size"`
		} `json:"order"`
		Fills []struct {
			Price float64 `json:"price"`
			Size  int64   `json:"size"`
		} `json:"fills"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Fills) != 1 || resp.Fills[0].Size != 4 {
		t.Errorf("fills = %+v", resp.Fills)
	}
	if resp.Order.Status != "FILLED" || resp.Order.RemainingSize != 0 {
		t.Errorf("order = %+v", resp.Order)
	}
}

func TestSubmitValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"bad side", `{"order_id":"x","side":"HOLD","type":"LIMIT","price":1,"size":1}`, http.StatusBadRequest},
		{"bad type", `{"order_id":"x","side":"BUY","type":"STOP","price":1,"size":1}`, http.StatusBadRequest},
		{"zero size", `{"order_id":"x","side":"BUY","type":"LIMIT","price":1,"size":0}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/orders", tc.body)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestSubmitDuplicateIDConflicts(t *testing.T) {
	srv := newTestServer(t)
	body := `{"order_id":"b1","client_id":"a","side":"BUY","type":"LIMIT","price":100,"size":1}`

	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/orders", body); rec.Code != http.StatusCreated {
		t.Fatalf("first submit: %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/orders", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate submit: %d, want 409", rec.Code)
	}
}

func TestGetOrder(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/v1/orders",
		`{"order_id":"b1","client_id":"a","side":"BUY","type":"LIMIT","price":100,"size":2}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/orders/b1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var view struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.OrderID != "b1" || view.Status != "ACTIVE" {
		t.Errorf("view = %+v", view)
	}

	if rec := doJSON(t, srv, http.MethodGet, "/api/v1/orders/ghost", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown order: %d, want 404", rec.Code)
	}
}

func TestCancelOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/v1/orders",
		`{"order_id":"b1","client_id":"a","side":"BUY","type":"LIMIT","price":100,"size":2}`)

	rec := doJSON(t, srv, http.MethodDelete, "/api/v1/orders/b1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"canceled":true`) {
		t.Errorf("cancel: %d %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/orders/b1", "")
	if !strings.Contains(rec.Body.String(), `"canceled":false`) {
		t.Errorf("second cancel: %s", rec.Body)
	}
}

func TestBookAndBestEndpoints(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/v1/orders",
		`{"order_id":"b1","client_id":"a","side":"BUY","type":"LIMIT","price":100.00,"size":3}`)
	doJSON(t, srv, http.MethodPost, "/api/v1/orders",
		`{"order_id":"s1","client_id":"b","side":"SELL","type":"LIMIT","price":100.10,"size":3}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/book?depth=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("book: %d", rec.Code)
	}
	var snap lob.BookSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Bids) != 1 || len(snap.Asks) != 1 || snap.BestBid == nil || snap.Spread == nil {
		t.Errorf("snapshot = %+v", snap)
	}

	if rec := doJSON(t, srv, http.MethodGet, "/api/v1/book?depth=x", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad depth: %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/book/best", "")
	var best struct {
		Mid *float64 `json:"mid"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &best); err != nil {
		t.Fatal(err)
	}
	if best.Mid == nil {
		t.Error("mid must be present with both sides quoted")
	}
}

func TestFillsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/v1/orders",
		`{"order_id":"b1","client_id":"alice","side":"BUY","type":"LIMIT","price":100,"size":2}`)
	doJSON(t, srv, http.MethodPost, "/api/v1/orders",
		`{"order_id":"s1","client_id":"bob","side":"SELL","type":"MARKET","size":2}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/fills?client_id=bob", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("fills: %d", rec.Code)
	}
	var fills []struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &fills); err != nil {
		t.Fatal(err)
	}
	if len(fills) != 1 || fills[0].OrderID != "s1" {
		t.Errorf("fills = %+v", fills)
	}

	if rec := doJSON(t, srv, http.MethodGet, "/api/v1/fills", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing client_id: %d", rec.Code)
	}
}
