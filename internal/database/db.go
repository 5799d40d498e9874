package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Breakout/internal/model"
)

// DefaultTable holds cached input candles.
const DefaultTable = "candles"

// DB represents a database connection
type DB struct {
	*sql.DB
	table  string
	logger zerolog.Logger
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Table    string
}

// DSN builds a postgres:// connection URL.
func (p ConnectionParams) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   p.Host + ":" + p.Port,
		Path:   "/" + p.DBName,
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

// New creates a new database connection
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	if params.Table == "" {
		params.Table = DefaultTable
	}

	db, err := sql.Open("postgres", params.DSN())
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres at %s:%s: %w", params.Host, params.Port, err)
	}

	// Create tables if they don't exist
	if _, err := db.ExecContext(ctx, createTableSQL(params.Table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table %s: %w", params.Table, err)
	}

	return &DB{
		DB:     db,
		table:  params.Table,
		logger: log.With().Str("component", "candle_store").Logger(),
	}, nil
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			open_time TIMESTAMPTZ NOT NULL,
			open DOUBLE PRECISION NOT NULL,
			high DOUBLE PRECISION NOT NULL,
			low DOUBLE PRECISION NOT NULL,
			close DOUBLE PRECISION NOT NULL,
			volume DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (symbol, interval, open_time)
		)
	`, pq.QuoteIdentifier(table))
}

func upsertSQL(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (symbol, interval, open_time, open, high, low, close, volume, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (symbol, interval, open_time)
		DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			updated_at = NOW()
	`, pq.QuoteIdentifier(table))
}

func selectSQL(table string) string {
	return fmt.Sprintf(`
		SELECT open_time, open, high, low, close, volume
		FROM %s
		WHERE symbol = $1 AND interval = $2 AND open_time >= $3 AND open_time <= $4
		ORDER BY open_time ASC
	`, pq.QuoteIdentifier(table))
}

// Name implements model.Source.
func (db *DB) Name() string { return "postgres" }

// FetchCandles implements model.Source over the stored candles.
func (db *DB) FetchCandles(ctx context.Context, req model.Request) ([]model.Candle, error) {
	return db.LoadCandles(ctx, req)
}

// SaveCandles upserts candles for a symbol and interval in one transaction.
func (db *DB) SaveCandles(ctx context.Context, symbol, interval string, candles []model.Candle) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, upsertSQL(db.table))
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i, c := range candles {
		if _, err := stmt.ExecContext(ctx, symbol, interval, c.OpenTime.UTC(),
			c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return 0, fmt.Errorf("upserting candle %d at %s: %w", i, c.OpenTime, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	db.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("count", len(candles)).Msg("Saved candles")
	return len(candles), nil
}

// LoadCandles reads stored candles inside [req.From, req.To], oldest first.
func (db *DB) LoadCandles(ctx context.Context, req model.Request) ([]model.Candle, error) {
	rows, err := db.QueryContext(ctx, selectSQL(db.table), req.Symbol, req.Interval, req.From.UTC(), req.To.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying candles: %w", err)
	}
	defer rows.Close()

	candles, err := scanCandles(rows)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		db.logger.Warn().Str("symbol", req.Symbol).Str("interval", req.Interval).Msg("No stored candles in range")
	}
	return candles, nil
}

// rowScanner is the subset of *sql.Rows used for mapping.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCandles(rows rowScanner) ([]model.Candle, error) {
	var candles []model.Candle
	for rows.Next() {
		var c model.Candle
		var openTime time.Time
		if err := rows.Scan(&openTime, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scanning candle: %w", err)
		}
		c.OpenTime = openTime.UTC()
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return candles, nil
}
