package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"smabacktest/types"
)

func statesFromValues(t *testing.T, values ...string) []types.PortfolioState {
	t.Helper()
	out := make([]types.PortfolioState, len(values))
	for i, v := range values {
		out[i] = types.PortfolioState{
			Date:  day(i),
			Cash:  decimal.RequireFromString(v),
			Units: decimal.Zero,
			Value: decimal.RequireFromString(v),
		}
	}
	return out
}

func TestComputeMetrics_CumulativeReturn(t *testing.T) {
	series := statesFromValues(t, "1000", "1100", "990", "1210")

	m, err := ComputeMetrics(series)
	if err != nil {
		t.Fatalf("ComputeMetrics() error = %v", err)
	}

	want := 1210.0/1000.0 - 1
	if m.CumulativeReturn != want {
		t.Errorf("CumulativeReturn = %v, want %v", m.CumulativeReturn, want)
	}
}

func TestComputeMetrics_AnnualizedReturn(t *testing.T) {
	series := statesFromValues(t, "1000", "1050", "1100", "1200")

	m, err := ComputeMetrics(series)
	if err != nil {
		t.Fatalf("ComputeMetrics() error = %v", err)
	}

	cum := 1200.0/1000.0 - 1
	want := math.Pow(1+cum, PeriodsPerYear/4.0) - 1
	if m.AnnualizedReturn != want {
		t.Errorf("AnnualizedReturn = %v, want %v", m.AnnualizedReturn, want)
	}
}

func TestComputeMetrics_MaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   float64
	}{
		{"non-decreasing path has zero drawdown", []string{"100", "100", "110", "120"}, 0},
		{"drop from peak", []string{"100", "120", "90", "115"}, (90.0 - 120.0) / 120.0},
		{"drawdown measured from running max", []string{"100", "80", "95", "60"}, (60.0 - 100.0) / 100.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ComputeMetrics(statesFromValues(t, tt.values...))
			if err != nil {
				t.Fatalf("ComputeMetrics() error = %v", err)
			}
			if m.MaxDrawdown != tt.want {
				t.Errorf("MaxDrawdown = %v, want %v", m.MaxDrawdown, tt.want)
			}
			if m.MaxDrawdown > 0 {
				t.Errorf("MaxDrawdown = %v, must never be positive", m.MaxDrawdown)
			}
		})
	}
}

func TestComputeMetrics_SharpeScaleInvariance(t *testing.T) {
	base := statesFromValues(t, "1000", "1100", "1050", "1180", "1090")
	scaled := statesFromValues(t, "2000", "2200", "2100", "2360", "2180")

	m1, err := ComputeMetrics(base)
	if err != nil {
		t.Fatalf("ComputeMetrics(base) error = %v", err)
	}
	m2, err := ComputeMetrics(scaled)
	if err != nil {
		t.Fatalf("ComputeMetrics(scaled) error = %v", err)
	}

	if !m1.SharpeDefined || !m2.SharpeDefined {
		t.Fatal("Sharpe unexpectedly undefined")
	}
	if m1.SharpeRatio != m2.SharpeRatio {
		t.Errorf("SharpeRatio changed under scaling: %v vs %v", m1.SharpeRatio, m2.SharpeRatio)
	}
	if m1.MaxDrawdown != m2.MaxDrawdown {
		t.Errorf("MaxDrawdown ratio changed under scaling: %v vs %v", m1.MaxDrawdown, m2.MaxDrawdown)
	}
}

func TestComputeMetrics_ZeroVarianceSharpeUndefined(t *testing.T) {
	m, err := ComputeMetrics(statesFromValues(t, "1000", "1000", "1000", "1000"))
	if err != nil {
		t.Fatalf("ComputeMetrics() error = %v", err)
	}
	if m.SharpeDefined {
		t.Error("SharpeDefined = true for zero-variance returns, want false")
	}
	if !math.IsNaN(m.SharpeRatio) {
		t.Errorf("SharpeRatio = %v for zero-variance returns, want NaN", m.SharpeRatio)
	}
	if m.Volatility != 0 {
		t.Errorf("Volatility = %v, want 0", m.Volatility)
	}
}

func TestComputeMetrics_TooShort(t *testing.T) {
	for _, values := range [][]string{{}, {"1000"}} {
		_, err := ComputeMetrics(statesFromValues(t, values...))
		var dataErr *DataError
		if !errors.As(err, &dataErr) {
			t.Errorf("ComputeMetrics(%d periods) error = %v, want DataError", len(values), err)
		}
	}
}

func TestComputeRollingMetrics(t *testing.T) {
	series := statesFromValues(t, "1000", "1100", "990", "1210", "1150", "1200")
	window := 3

	rm, err := ComputeRollingMetrics(series, window)
	if err != nil {
		t.Fatalf("ComputeRollingMetrics() error = %v", err)
	}

	// Warm-up entries are NaN, not zero.
	for i := 0; i < window; i++ {
		if !math.IsNaN(rm.Sharpe[i]) {
			t.Errorf("Sharpe[%d] = %v during warm-up, want NaN", i, rm.Sharpe[i])
		}
		if !math.IsNaN(rm.Volatility[i]) {
			t.Errorf("Volatility[%d] = %v during warm-up, want NaN", i, rm.Volatility[i])
		}
	}
	for i := window; i < len(series); i++ {
		if math.IsNaN(rm.Sharpe[i]) || math.IsNaN(rm.Volatility[i]) {
			t.Errorf("rolling metrics undefined at %d, want defined", i)
		}
	}

	// First defined window covers the first three returns.
	values := equityValues(series)
	returns := periodReturns(values)
	mean, std := meanStddev(returns[0:window])
	wantSharpe := mean / std * math.Sqrt(PeriodsPerYear)
	if rm.Sharpe[window] != wantSharpe {
		t.Errorf("Sharpe[%d] = %v, want %v", window, rm.Sharpe[window], wantSharpe)
	}
	wantVol := std * math.Sqrt(PeriodsPerYear)
	if rm.Volatility[window] != wantVol {
		t.Errorf("Volatility[%d] = %v, want %v", window, rm.Volatility[window], wantVol)
	}
}

func TestComputeRollingMetrics_DrawdownUsesGlobalRunningMax(t *testing.T) {
	series := statesFromValues(t, "100", "120", "90", "95", "130", "110")

	rm, err := ComputeRollingMetrics(series, 2)
	if err != nil {
		t.Fatalf("ComputeRollingMetrics() error = %v", err)
	}

	want := []float64{
		0,
		0,
		(90.0 - 120.0) / 120.0,
		(95.0 - 120.0) / 120.0,
		0,
		(110.0 - 130.0) / 130.0,
	}
	for i := range want {
		if rm.Drawdown[i] != want[i] {
			t.Errorf("Drawdown[%d] = %v, want %v", i, rm.Drawdown[i], want[i])
		}
	}
}

func TestComputeRollingMetrics_WindowValidation(t *testing.T) {
	series := statesFromValues(t, "100", "110", "120")

	_, err := ComputeRollingMetrics(series, 1)
	var paramErr *ParameterError
	if !errors.As(err, &paramErr) {
		t.Fatalf("ComputeRollingMetrics(window=1) error = %v, want ParameterError", err)
	}
	if paramErr.Param != "window" {
		t.Errorf("ParameterError.Param = %q, want %q", paramErr.Param, "window")
	}
}

func TestComputeTradeStats(t *testing.T) {
	trades := []types.Trade{
		// Winning round trip: in 1000 (cost 10), out 1200 (cost 12).
		{Date: day(0), Direction: types.TradeEnter, Notional: decimal.RequireFromString("990"), Cost: decimal.RequireFromString("10")},
		{Date: day(1), Direction: types.TradeExit, Notional: decimal.RequireFromString("1200"), Cost: decimal.RequireFromString("12")},
		// Losing round trip: in 1188 (cost 0), out 1000 (cost 0).
		{Date: day(2), Direction: types.TradeEnter, Notional: decimal.RequireFromString("1188"), Cost: decimal.Zero},
		{Date: day(3), Direction: types.TradeExit, Notional: decimal.RequireFromString("1000"), Cost: decimal.Zero},
		// Open position at the end: entry only.
		{Date: day(4), Direction: types.TradeEnter, Notional: decimal.RequireFromString("1000"), Cost: decimal.RequireFromString("5")},
	}

	stats := ComputeTradeStats(trades)

	if stats.Trades != 5 {
		t.Errorf("Trades = %d, want 5", stats.Trades)
	}
	if stats.RoundTrips != 2 {
		t.Errorf("RoundTrips = %d, want 2", stats.RoundTrips)
	}
	if stats.Wins != 1 || stats.Losses != 1 {
		t.Errorf("Wins/Losses = %d/%d, want 1/1", stats.Wins, stats.Losses)
	}
	if stats.WinRate != 0.5 {
		t.Errorf("WinRate = %v, want 0.5", stats.WinRate)
	}
	// Win: 1188 - 1000 = 188. Loss: 1000 - 1188 = -188.
	if !stats.AvgWin.Equal(decimal.RequireFromString("188")) {
		t.Errorf("AvgWin = %s, want 188", stats.AvgWin)
	}
	if !stats.AvgLoss.Equal(decimal.RequireFromString("188")) {
		t.Errorf("AvgLoss = %s, want 188", stats.AvgLoss)
	}
	if stats.ProfitFactor != 1 {
		t.Errorf("ProfitFactor = %v, want 1", stats.ProfitFactor)
	}
	if !stats.TotalCosts.Equal(decimal.RequireFromString("27")) {
		t.Errorf("TotalCosts = %s, want 27", stats.TotalCosts)
	}
}

func TestComputeTradeStats_Empty(t *testing.T) {
	stats := ComputeTradeStats(nil)
	if stats.Trades != 0 || stats.RoundTrips != 0 {
		t.Errorf("stats = %+v, want empty", stats)
	}
	if !math.IsNaN(stats.WinRate) {
		t.Errorf("WinRate = %v with no round trips, want NaN", stats.WinRate)
	}
	if !math.IsNaN(stats.ProfitFactor) {
		t.Errorf("ProfitFactor = %v with no round trips, want NaN", stats.ProfitFactor)
	}
}
