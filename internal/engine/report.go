package engine

import (
	"fmt"
	"math"

	"smabacktest/types"
)

// PrintReport renders a human-readable performance summary for a single run.
func PrintReport(series []types.PortfolioState, m Metrics, stats TradeStats) {
	first := series[0]
	last := series[len(series)-1]

	fmt.Println("===== Backtest Report =====")
	fmt.Printf("Start Date:            %s\n", first.Date.Format("2006-01-02"))
	fmt.Printf("End Date:              %s\n", last.Date.Format("2006-01-02"))
	fmt.Printf("Periods:               %d\n", len(series))

	fmt.Println("\n-- Performance --")
	fmt.Printf("Initial Value:         %s\n", first.Value)
	fmt.Printf("Final Value:           %s\n", last.Value)
	fmt.Printf("Cumulative Return:     %.2f%%\n", m.CumulativeReturn*100)
	fmt.Printf("Annualized Return:     %.2f%%\n", m.AnnualizedReturn*100)
	fmt.Printf("Max Drawdown:          %.2f%%\n", m.MaxDrawdown*100)
	if m.SharpeDefined {
		fmt.Printf("Sharpe Ratio:          %.2f\n", m.SharpeRatio)
	} else {
		fmt.Println("Sharpe Ratio:          undefined (zero-variance returns)")
	}
	fmt.Printf("Volatility:            %.4f\n", m.Volatility)

	fmt.Println("\n-- Trades --")
	fmt.Printf("Total Trades:          %d\n", stats.Trades)
	fmt.Printf("Round Trips:           %d\n", stats.RoundTrips)
	if !math.IsNaN(stats.WinRate) {
		fmt.Printf("Win Rate:              %.2f%%\n", stats.WinRate*100)
	}
	fmt.Printf("Avg Win:               %s\n", stats.AvgWin)
	fmt.Printf("Avg Loss:              %s\n", stats.AvgLoss)
	if !math.IsNaN(stats.ProfitFactor) {
		fmt.Printf("Profit Factor:         %.2f\n", stats.ProfitFactor)
	}
	fmt.Printf("Total Costs:           %s\n", stats.TotalCosts)

	fmt.Println("===========================")
}
