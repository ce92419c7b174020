// Package journal persists trade events in pebble and doubles as the
// outbox the broadcaster drains. Every record carries a delivery state,
// so publishing resumes across restarts (at-least-once).
package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// State is a record's delivery state.
type State uint8

const (
	StatePending State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Record is one journaled trade event.
type Record struct {
	TradeID     uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// binary layout: [state:1][retries:4][lastAttempt:8][payload...]
func encodeRecord(r Record) []byte {
	buf := make([]byte, 13+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[13:], r.Payload)
	return buf
}

func decodeRecord(tradeID uint64, b []byte) (Record, error) {
	if len(b) < 13 {
		return Record{}, errors.New("journal record too short")
	}
	return Record{
		TradeID:     tradeID,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte(nil), b[13:]...),
	}, nil
}

// Journal is the pebble-backed trade event store.
type Journal struct {
	db *pebble.DB
}

func Open(dir string) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // trade events must survive a crash
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores a new pending trade event. Idempotent per trade id only in
// the sense that a rewrite resets the record to pending.
func (j *Journal) Append(tradeID uint64, payload []byte) error {
	rec := Record{State: StatePending, Payload: payload}
	return j.db.Set(keyFor(tradeID), encodeRecord(rec), pebble.Sync)
}

// MarkSent bumps the retry counter and stamps the attempt time.
func (j *Journal) MarkSent(tradeID uint64) error {
	return j.transition(tradeID, StateSent, true)
}

// MarkAcked finalizes a delivered record.
func (j *Journal) MarkAcked(tradeID uint64) error {
	return j.transition(tradeID, StateAcked, false)
}

// MarkFailed parks a record that exhausted its retries.
func (j *Journal) MarkFailed(tradeID uint64) error {
	return j.transition(tradeID, StateFailed, false)
}

func (j *Journal) transition(tradeID uint64, state State, bumpRetries bool) error {
	rec, err := j.Get(tradeID)
	if err != nil {
		return err
	}
	rec.State = state
	rec.LastAttempt = time.Now().UnixNano()
	if bumpRetries {
		rec.Retries++
	}
	return j.db.Set(keyFor(tradeID), encodeRecord(rec), pebble.Sync)
}

// Get returns the current record for a trade.
func (j *Journal) Get(tradeID uint64) (Record, error) {
	val, closer, err := j.db.Get(keyFor(tradeID))
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()
	return decodeRecord(tradeID, val)
}

// Delete removes an acked record (cleanup).
func (j *Journal) Delete(tradeID uint64) error {
	return j.db.Delete(keyFor(tradeID), pebble.Sync)
}

// ScanUndelivered visits every record still awaiting an ack (pending or
// sent), in trade id order. Used by the broadcaster.
func (j *Journal) ScanUndelivered(fn func(rec Record) error) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("trade/"),
		UpperBound: []byte("trade/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		id, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(id, iter.Value())
		if err != nil {
			return err
		}
		if rec.State != StatePending && rec.State != StateSent {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(tradeID uint64) []byte {
	return []byte(fmt.Sprintf("trade/%020d", tradeID))
}

func parseKey(b []byte) (uint64, error) {
	var id uint64
	_, err := fmt.Sscanf(string(b), "trade/%d", &id)
	return id, err
}
