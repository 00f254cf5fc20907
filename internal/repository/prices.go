package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"smabacktest/types"
)

type priceRow struct {
	Day   time.Time
	Close decimal.Decimal
}

const dailyClosesQuery = `
SELECT day, close
FROM daily_closes
WHERE ticker = $1 AND day >= $2 AND day <= $3
ORDER BY day`

type pgxPrices struct {
	pool *pgxpool.Pool
}

func (q pgxPrices) DailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]priceRow, error) {
	rows, err := q.pool.Query(ctx, dailyClosesQuery, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("query daily closes: %w", err)
	}
	defer rows.Close()

	var out []priceRow
	for rows.Next() {
		var r priceRow
		if err := rows.Scan(&r.Day, &r.Close); err != nil {
			return nil, fmt.Errorf("scan daily close: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPriceSeries retrieves the ordered daily close series for a ticker.
func (db *Database) GetPriceSeries(ticker string, start, end time.Time, ctx context.Context) ([]types.PricePoint, error) {
	rows, err := db.prices.DailyCloses(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ticker %s %w", ticker, ErrNoPrices)
	}
	return convertPrices(rows), nil
}

func convertPrices(rows []priceRow) []types.PricePoint {
	prices := make([]types.PricePoint, 0, len(rows))
	for _, r := range rows {
		prices = append(prices, types.PricePoint{
			Date:  r.Day,
			Close: r.Close,
		})
	}
	return prices
}
