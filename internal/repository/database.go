package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Global error declarations.
var (
	ErrNoPrices         = errors.New("no prices found in datasource")
	ErrAllSourcesFailed = errors.New("failed to fetch prices from all available sources")
)

type pricesRepository interface {
	DailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]priceRow, error)
}

// Database struct that holds the database connection pool.
type Database struct {
	prices pricesRepository
	conn   *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(context.Background()); err != nil {
		return Database{}, err
	}

	return Database{
		prices: pgxPrices{pool: conn},
		conn:   conn,
	}, nil
}

// Close releases the underlying connection pool.
func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
