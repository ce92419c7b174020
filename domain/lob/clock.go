package lob

import "time"

// Clock supplies timestamps for orders and fills. Injecting it keeps the
// matching path off the wall clock so tests can use fixed or logical time.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock in unix nanoseconds.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().UnixNano() }

// TradeIDSource hands out trade identifiers. Implementations must be
// strictly monotonic so fills are reproducible under replay.
type TradeIDSource interface {
	Next() uint64
}
