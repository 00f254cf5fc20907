package engine

import (
	"github.com/shopspring/decimal"

	"smabacktest/types"
)

// Simulate replays a long/flat signal series against a close-price series and
// returns the per-period portfolio states plus the ordered trade log.
//
// The signal is applied with a strict one-period lag: the position held during
// period t is the signal observed at the close of t-1, so period 0 is always
// flat. Entries invest all cash after deducting costRate × cash; exits return
// units × price × (1 − costRate) to cash. Validation failures abort before any
// state is built, so a non-nil error always means no partial output.
func Simulate(
	prices []types.PricePoint,
	signals []types.SignalPoint,
	initialCash decimal.Decimal,
	costRate decimal.Decimal,
) ([]types.PortfolioState, []types.Trade, error) {
	if err := validateParams(initialCash, costRate); err != nil {
		return nil, nil, err
	}
	if err := validateSeries(prices, signals); err != nil {
		return nil, nil, err
	}

	cash := initialCash
	units := decimal.Zero
	position := types.PositionFlat

	states := make([]types.PortfolioState, 0, len(prices))
	var trades []types.Trade

	for t, p := range prices {
		// No signal exists before period 0, so the first period never trades.
		desired := types.PositionFlat
		if t > 0 && signals[t-1].Signal == types.SignalLong {
			desired = types.PositionLong
		}

		switch {
		case desired == types.PositionLong && position == types.PositionFlat:
			cost := cash.Mul(costRate)
			invested := cash.Sub(cost)
			units = invested.Div(p.Close)
			cash = decimal.Zero
			position = types.PositionLong
			trades = append(trades, types.Trade{
				Date:      p.Date,
				Direction: types.TradeEnter,
				Price:     p.Close,
				Units:     units,
				Notional:  invested,
				Cost:      cost,
			})

		case desired == types.PositionFlat && position == types.PositionLong:
			gross := units.Mul(p.Close)
			cost := gross.Mul(costRate)
			soldUnits := units
			cash = gross.Sub(cost)
			units = decimal.Zero
			position = types.PositionFlat
			trades = append(trades, types.Trade{
				Date:      p.Date,
				Direction: types.TradeExit,
				Price:     p.Close,
				Units:     soldUnits,
				Notional:  gross,
				Cost:      cost,
			})
		}

		states = append(states, types.PortfolioState{
			Date:     p.Date,
			Cash:     cash,
			Units:    units,
			Value:    cash.Add(units.Mul(p.Close)),
			Position: position,
		})
	}

	return states, trades, nil
}

func validateParams(initialCash, costRate decimal.Decimal) error {
	if !initialCash.IsPositive() {
		return &ParameterError{
			Param:  "initial_cash",
			Value:  initialCash.String(),
			Reason: "must be > 0",
		}
	}
	if costRate.IsNegative() || costRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return &ParameterError{
			Param:  "transaction_cost_rate",
			Value:  costRate.String(),
			Reason: "must be in [0, 1)",
		}
	}
	return nil
}

func validateSeries(prices []types.PricePoint, signals []types.SignalPoint) error {
	if len(prices) != len(signals) {
		return &DataError{
			Index:  min(len(prices), len(signals)),
			Reason: "price and signal series length mismatch",
		}
	}
	for i, p := range prices {
		if !p.Close.IsPositive() {
			return &DataError{Index: i, Date: p.Date, Reason: "non-positive close price"}
		}
		if !p.Date.Equal(signals[i].Date) {
			return &DataError{Index: i, Date: p.Date, Reason: "price and signal series date mismatch"}
		}
		if i > 0 && !p.Date.After(prices[i-1].Date) {
			return &DataError{Index: i, Date: p.Date, Reason: "dates not strictly increasing"}
		}
	}
	return nil
}
