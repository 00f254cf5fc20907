package engine

import (
	"context"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"smabacktest/internal/indicators"
	"smabacktest/types"
)

// RankMetric selects the column used to order grid results.
type RankMetric string

const (
	RankBySharpe           RankMetric = "sharpe_ratio"
	RankByCumulativeReturn RankMetric = "cumulative_return"
	RankByMaxDrawdown      RankMetric = "max_drawdown"
)

// Range is an inclusive window-size range stepped by Step (1 when zero).
type Range struct {
	Min  int
	Max  int
	Step int
}

func (r Range) values() []int {
	step := r.Step
	if step <= 0 {
		step = 1
	}
	var out []int
	for v := r.Min; v <= r.Max; v += step {
		out = append(out, v)
	}
	return out
}

// GridConfig drives RunGrid. Workers <= 0 means one worker per CPU.
type GridConfig struct {
	FastRange       Range
	SlowRange       Range
	InitialCash     decimal.Decimal
	TransactionCost decimal.Decimal
	RankBy          RankMetric
	Workers         int
	FailFast        bool
	ShowProgress    bool
}

type gridCell struct {
	fast int
	slow int
}

// RunGrid evaluates the full pipeline (SMA -> signals -> simulate -> metrics)
// for every window pair in the configured ranges with fast < slow. Cells run
// concurrently over a worker pool; each cell is an independent computation
// over the shared read-only price series, and results are merged with a stable
// sort so parallel and sequential runs produce identical output.
//
// A failing cell is recorded as a failed row and does not abort its siblings
// unless FailFast is set. Cancellation is cooperative: it is checked before
// each cell starts and never interrupts a running simulation.
func RunGrid(ctx context.Context, prices []types.PricePoint, cfg GridConfig) ([]types.GridRow, error) {
	rankBy := cfg.RankBy
	if rankBy == "" {
		rankBy = RankBySharpe
	}
	switch rankBy {
	case RankBySharpe, RankByCumulativeReturn, RankByMaxDrawdown:
	default:
		return nil, &ParameterError{Param: "rank_by", Value: string(rankBy), Reason: "unknown rank metric"}
	}
	if cfg.FastRange.Min < 1 {
		return nil, &ParameterError{Param: "fast_range", Value: strconv.Itoa(cfg.FastRange.Min), Reason: "window sizes must be >= 1"}
	}
	if cfg.SlowRange.Min < 1 {
		return nil, &ParameterError{Param: "slow_range", Value: strconv.Itoa(cfg.SlowRange.Min), Reason: "window sizes must be >= 1"}
	}

	var cells []gridCell
	for _, fast := range cfg.FastRange.values() {
		for _, slow := range cfg.SlowRange.values() {
			if fast >= slow {
				continue
			}
			cells = append(cells, gridCell{fast: fast, slow: slow})
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(cells) {
		workers = len(cells)
	}

	var bar *progressbar.ProgressBar
	if cfg.ShowProgress {
		bar = initProgressBar(len(cells))
	}

	rows := make([]types.GridRow, len(cells))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		failErr  error
	)
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				cell := cells[i]

				// Cells already started are never interrupted; cancellation
				// only stops cells that have not begun.
				select {
				case <-runCtx.Done():
					rows[i] = types.GridRow{Fast: cell.fast, Slow: cell.slow, Err: "cell skipped: " + runCtx.Err().Error()}
					continue
				default:
				}

				row, cellErr := runGridCell(prices, cell.fast, cell.slow, cfg.InitialCash, cfg.TransactionCost)
				rows[i] = row
				if cellErr != nil && cfg.FailFast {
					failOnce.Do(func() {
						failErr = &CellError{Fast: cell.fast, Slow: cell.slow, Err: cellErr}
						cancel()
					})
				}
				if bar != nil {
					bar.Add(1)
				}
			}
		}()
	}

	for i := range cells {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if failErr != nil {
		return nil, failErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rankRows(rows, rankBy)
	return rows, nil
}

// runGridCell runs the exact same pipeline a caller would run by hand for a
// single window pair, so a one-cell grid row matches the direct computation
// bit for bit. The error mirrors row.Err and keeps the typed cause for
// fail-fast reporting.
func runGridCell(prices []types.PricePoint, fast, slow int, initialCash, costRate decimal.Decimal) (types.GridRow, error) {
	row := types.GridRow{Fast: fast, Slow: slow}

	fastMA, err := indicators.SMA(prices, fast)
	if err != nil {
		row.Err = err.Error()
		return row, err
	}
	slowMA, err := indicators.SMA(prices, slow)
	if err != nil {
		row.Err = err.Error()
		return row, err
	}
	signals, err := GenerateSignals(fastMA, slowMA)
	if err != nil {
		row.Err = err.Error()
		return row, err
	}
	series, trades, err := Simulate(prices, signals, initialCash, costRate)
	if err != nil {
		row.Err = err.Error()
		return row, err
	}
	m, err := ComputeMetrics(series)
	if err != nil {
		row.Err = err.Error()
		return row, err
	}

	row.CumulativeReturn = m.CumulativeReturn
	row.SharpeRatio = m.SharpeRatio
	row.SharpeDefined = m.SharpeDefined
	row.MaxDrawdown = m.MaxDrawdown
	row.TradeCount = len(trades)
	return row, nil
}

// rankRows orders successful rows by the rank metric descending, breaking
// ties by ascending fast then slow window. Rows with an undefined Sharpe sort
// below every defined one when ranking by Sharpe, and failed rows always sort
// last in (fast, slow) order.
func rankRows(rows []types.GridRow, rankBy RankMetric) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.Err == "") != (b.Err == "") {
			return a.Err == ""
		}
		if a.Err == "" {
			switch rankBy {
			case RankBySharpe:
				if a.SharpeDefined != b.SharpeDefined {
					return a.SharpeDefined
				}
				if a.SharpeDefined && a.SharpeRatio != b.SharpeRatio {
					return a.SharpeRatio > b.SharpeRatio
				}
			case RankByCumulativeReturn:
				if a.CumulativeReturn != b.CumulativeReturn {
					return a.CumulativeReturn > b.CumulativeReturn
				}
			case RankByMaxDrawdown:
				if a.MaxDrawdown != b.MaxDrawdown {
					return a.MaxDrawdown > b.MaxDrawdown
				}
			}
		}
		if a.Fast != b.Fast {
			return a.Fast < b.Fast
		}
		return a.Slow < b.Slow
	})
}

func initProgressBar(cells int) *progressbar.ProgressBar {
	return progressbar.NewOptions(cells,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Grid search in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
