// Package indicators computes rolling indicator series over price history.
package indicators

import (
	"fmt"

	"github.com/shopspring/decimal"

	"smabacktest/types"
)

// SMA returns the trailing simple moving average of the close prices over the
// given window. The output is aligned to the input; the first window-1 points
// are marked undefined while the window fills.
func SMA(prices []types.PricePoint, window int) ([]types.MAPoint, error) {
	if window < 1 {
		return nil, fmt.Errorf("sma window must be >= 1, got %d", window)
	}
	if window > len(prices) {
		return nil, fmt.Errorf("sma window %d larger than series length %d", window, len(prices))
	}

	divisor := decimal.NewFromInt(int64(window))
	out := make([]types.MAPoint, len(prices))
	sum := decimal.Zero

	for i, p := range prices {
		sum = sum.Add(p.Close)
		if i >= window {
			sum = sum.Sub(prices[i-window].Close)
		}
		out[i] = types.MAPoint{Date: p.Date}
		if i >= window-1 {
			out[i].Value = sum.Div(divisor)
			out[i].Defined = true
		}
	}
	return out, nil
}
