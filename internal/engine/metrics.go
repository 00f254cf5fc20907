package engine

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"smabacktest/types"
)

// PeriodsPerYear is the annualization constant for daily bars.
const PeriodsPerYear = 252

// Metrics summarizes a portfolio value path. When the path has zero-variance
// returns the Sharpe ratio is undefined rather than zero: SharpeDefined is
// false and SharpeRatio is NaN.
type Metrics struct {
	CumulativeReturn float64
	AnnualizedReturn float64
	Volatility       float64
	SharpeRatio      float64
	SharpeDefined    bool
	MaxDrawdown      float64
}

// RollingMetrics holds per-period rolling statistics aligned to the portfolio
// series. Entries before the window has filled are NaN. Drawdown is measured
// against the running maximum since the series start, not a windowed maximum,
// so it is defined for every period.
type RollingMetrics struct {
	Sharpe     []float64
	Volatility []float64
	Drawdown   []float64
}

// ComputeMetrics derives scalar performance statistics from a portfolio value
// path of at least two periods.
func ComputeMetrics(series []types.PortfolioState) (Metrics, error) {
	if len(series) < 2 {
		return Metrics{}, &DataError{
			Index:  len(series),
			Reason: "need at least 2 portfolio periods for metrics",
		}
	}

	values := equityValues(series)
	returns := periodReturns(values)

	m := Metrics{
		CumulativeReturn: values[len(values)-1]/values[0] - 1,
		MaxDrawdown:      maxDrawdown(values),
		Volatility:       math.NaN(),
		SharpeRatio:      math.NaN(),
	}
	m.AnnualizedReturn = math.Pow(1+m.CumulativeReturn, PeriodsPerYear/float64(len(values))) - 1

	if len(returns) >= 2 {
		mean, std := meanStddev(returns)
		m.Volatility = std
		if std > 0 {
			m.SharpeRatio = mean / std * math.Sqrt(PeriodsPerYear)
			m.SharpeDefined = true
		}
	}
	return m, nil
}

// ComputeRollingMetrics derives rolling Sharpe and volatility over the given
// window of period returns, plus the running drawdown path. Window must be at
// least 2 so a sample standard deviation exists.
func ComputeRollingMetrics(series []types.PortfolioState, window int) (RollingMetrics, error) {
	if window < 2 {
		return RollingMetrics{}, &ParameterError{
			Param:  "window",
			Value:  strconv.Itoa(window),
			Reason: "rolling window must be >= 2",
		}
	}
	if len(series) < 2 {
		return RollingMetrics{}, &DataError{
			Index:  len(series),
			Reason: "need at least 2 portfolio periods for rolling metrics",
		}
	}

	values := equityValues(series)
	returns := periodReturns(values)
	n := len(values)

	rm := RollingMetrics{
		Sharpe:     make([]float64, n),
		Volatility: make([]float64, n),
		Drawdown:   make([]float64, n),
	}

	runningMax := values[0]
	for t := 0; t < n; t++ {
		if values[t] > runningMax {
			runningMax = values[t]
		}
		rm.Drawdown[t] = (values[t] - runningMax) / runningMax

		// Period t has the window of returns r[t-window+1..t]; r[t] lives at
		// returns[t-1].
		if t < window {
			rm.Sharpe[t] = math.NaN()
			rm.Volatility[t] = math.NaN()
			continue
		}
		mean, std := meanStddev(returns[t-window : t])
		rm.Volatility[t] = std * math.Sqrt(PeriodsPerYear)
		if std > 0 {
			rm.Sharpe[t] = mean / std * math.Sqrt(PeriodsPerYear)
		} else {
			rm.Sharpe[t] = math.NaN()
		}
	}
	return rm, nil
}

// TradeStats aggregates realized round trips from a trade log. A round trip
// is one enter followed by its exit; a still-open final position is not
// realized and only contributes its entry cost.
type TradeStats struct {
	Trades       int
	RoundTrips   int
	Wins         int
	Losses       int
	WinRate      float64
	AvgWin       decimal.Decimal
	AvgLoss      decimal.Decimal
	ProfitFactor float64
	TotalCosts   decimal.Decimal
}

// ComputeTradeStats pairs the ordered trade log into round trips and computes
// win/loss distribution statistics. WinRate and ProfitFactor are NaN when no
// round trip was realized.
func ComputeTradeStats(trades []types.Trade) TradeStats {
	stats := TradeStats{
		Trades:       len(trades),
		WinRate:      math.NaN(),
		ProfitFactor: math.NaN(),
		AvgWin:       decimal.Zero,
		AvgLoss:      decimal.Zero,
		TotalCosts:   decimal.Zero,
	}

	sumWins := decimal.Zero
	sumLosses := decimal.Zero
	var entry *types.Trade

	for i := range trades {
		tr := &trades[i]
		stats.TotalCosts = stats.TotalCosts.Add(tr.Cost)

		switch tr.Direction {
		case types.TradeEnter:
			entry = tr
		case types.TradeExit:
			if entry == nil {
				continue
			}
			// Net PnL of the trip: cash out minus cash in.
			proceeds := tr.Notional.Sub(tr.Cost)
			invested := entry.Notional.Add(entry.Cost)
			net := proceeds.Sub(invested)

			stats.RoundTrips++
			if net.IsPositive() {
				stats.Wins++
				sumWins = sumWins.Add(net)
			} else if net.IsNegative() {
				stats.Losses++
				sumLosses = sumLosses.Add(net.Abs())
			}
			entry = nil
		}
	}

	if stats.RoundTrips > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.RoundTrips)
	}
	if stats.Wins > 0 {
		stats.AvgWin = sumWins.Div(decimal.NewFromInt(int64(stats.Wins)))
	}
	if stats.Losses > 0 {
		stats.AvgLoss = sumLosses.Div(decimal.NewFromInt(int64(stats.Losses)))
	}
	if sumLosses.IsPositive() {
		stats.ProfitFactor = sumWins.InexactFloat64() / sumLosses.InexactFloat64()
	} else if sumWins.IsPositive() {
		stats.ProfitFactor = math.Inf(1)
	}
	return stats
}

func equityValues(series []types.PortfolioState) []float64 {
	values := make([]float64, len(series))
	for i, s := range series {
		values[i] = s.Value.InexactFloat64()
	}
	return values
}

func periodReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		returns[i-1] = values[i]/values[i-1] - 1
	}
	return returns
}

// meanStddev returns the mean and sample standard deviation (ddof=1) of xs.
// Caller guarantees len(xs) >= 2.
func meanStddev(xs []float64) (float64, float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var varianceSum float64
	for _, x := range xs {
		diff := x - mean
		varianceSum += diff * diff
	}
	return mean, math.Sqrt(varianceSum / float64(len(xs)-1))
}

func maxDrawdown(values []float64) float64 {
	runningMax := values[0]
	minDD := 0.0
	for _, v := range values {
		if v > runningMax {
			runningMax = v
		}
		dd := (v - runningMax) / runningMax
		if dd < minDD {
			minDD = dd
		}
	}
	return minDD
}
