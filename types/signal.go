package types

import "time"

// Signal is the normalized position instruction for one period. A series is
// SignalUndefined during the indicator warm-up, then SignalFlat or SignalLong.
type Signal int8

const (
	SignalUndefined Signal = iota - 1
	SignalFlat
	SignalLong
)

func (s Signal) String() string {
	switch s {
	case SignalUndefined:
		return "undefined"
	case SignalFlat:
		return "flat"
	case SignalLong:
		return "long"
	}
	return "unknown"
}

// SignalPoint is one period of a SignalSeries, date-aligned to the price
// series it was derived from.
type SignalPoint struct {
	Date   time.Time
	Signal Signal
}
