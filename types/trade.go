package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeDirection string

const (
	TradeEnter TradeDirection = "ENTER"
	TradeExit  TradeDirection = "EXIT"
)

// Trade records one executed position change. Notional is the market value
// moved (units × execution price), Cost the proportional transaction cost
// charged on top of it.
type Trade struct {
	Date      time.Time       `json:"date"`
	Direction TradeDirection  `json:"direction"`
	Price     decimal.Decimal `json:"price"`
	Units     decimal.Decimal `json:"units"`
	Notional  decimal.Decimal `json:"notional"`
	Cost      decimal.Decimal `json:"cost"`
}
