package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MAPoint is one period of a moving-average series. Defined is false during
// the warm-up periods before the trailing window has filled.
type MAPoint struct {
	Date    time.Time
	Value   decimal.Decimal
	Defined bool
}
