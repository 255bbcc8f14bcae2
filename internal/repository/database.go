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
	ErrAssetNotFound          = errors.New("not found in datasource")
	ErrNoMonthlyPrices        = errors.New("no monthly prices found in datasource")
	ErrMissingPriceColumn     = errors.New("returns column has no matching price column")
	ErrMissingDateColumn      = errors.New("no Date column")
	ErrUnsortedTable          = errors.New("rows are not in ascending date order")
	ErrCurrencyMapUnavailable = errors.New("currency map unavailable")
)

type assetsRepository interface {
	GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error)
	ListAssets(ctx context.Context) ([]assetRow, error)
}
type pricesRepository interface {
	ListMonthlyPrices(ctx context.Context, arg listMonthlyPricesParams) ([]monthlyPriceRow, error)
}

// Database struct that holds the database connection and queries.
type Database struct {
	assets assetsRepository
	prices pricesRepository
	conn   *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	config.MaxConnIdleTime = 5 * time.Minute

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	q := &queries{pool: conn}
	return &Database{
		assets: q,
		prices: q,
		conn:   conn,
	}, nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
