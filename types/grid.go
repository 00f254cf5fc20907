package types

// GridRow is the result of evaluating one (fast, slow) window pair. A failed
// cell keeps its window pair and carries the failure in Err; its metric fields
// are zero and must not be interpreted.
type GridRow struct {
	Fast             int     `json:"fast"`
	Slow             int     `json:"slow"`
	CumulativeReturn float64 `json:"cumulative_return"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SharpeDefined    bool    `json:"sharpe_defined"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	TradeCount       int     `json:"trade_count"`
	Err              string  `json:"err,omitempty"`
}
