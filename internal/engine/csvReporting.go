package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"smabacktest/types"
)

// WriteGridCSVFile writes the ranked grid table to a CSV file at the given path.
func WriteGridCSVFile(path string, rows []types.GridRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create grid file: %w", err)
	}
	defer f.Close()

	return WriteGridCSV(f, rows)
}

// WriteGridCSV writes the ranked grid table to any io.Writer as CSV with the
// fixed export columns. Failed rows carry no metrics and are skipped.
// You can pass os.Stdout for debugging, or a file.
func WriteGridCSV(w io.Writer, rows []types.GridRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"fast",
		"slow",
		"cumulative_return",
		"sharpe_ratio",
		"max_drawdown",
		"trade_count",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		if row.Err != "" {
			continue
		}
		record := []string{
			strconv.Itoa(row.Fast),
			strconv.Itoa(row.Slow),
			formatFloat(row.CumulativeReturn),
			formatFloat(row.SharpeRatio),
			formatFloat(row.MaxDrawdown),
			strconv.Itoa(row.TradeCount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteTradesCSVFile writes the trade log to a CSV file at the given path.
func WriteTradesCSVFile(path string, trades []types.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	return WriteTradesCSV(f, trades)
}

// WriteTradesCSV writes the trade log to any io.Writer as CSV.
func WriteTradesCSV(w io.Writer, trades []types.Trade) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"date", // RFC3339
		"direction",
		"price",
		"units",
		"notional",
		"cost",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tr := range trades {
		record := []string{
			tr.Date.Format(time.RFC3339),
			string(tr.Direction),
			tr.Price.String(),
			tr.Units.String(),
			tr.Notional.String(),
			tr.Cost.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
