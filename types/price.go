package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one period of the underlying's close price history.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}
