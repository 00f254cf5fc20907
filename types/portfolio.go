package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the binary holding state of the simulated portfolio: fully
// invested or fully flat, no partial sizing.
type Position int8

const (
	PositionFlat Position = iota
	PositionLong
)

func (p Position) String() string {
	if p == PositionLong {
		return "long"
	}
	return "flat"
}

// PortfolioState is the mark-to-market snapshot of the portfolio at the close
// of one period. Value is always Cash + Units × close.
type PortfolioState struct {
	Date     time.Time       `json:"date"`
	Cash     decimal.Decimal `json:"cash"`
	Units    decimal.Decimal `json:"units"`
	Value    decimal.Decimal `json:"value"`
	Position Position        `json:"position"`
}
