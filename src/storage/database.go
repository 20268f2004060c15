package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"trading-backend/src/logger"
	"trading-backend/src/models"

	"github.com/jmoiron/sqlx"
)

// Tables shared by both drivers. Column types are chosen so that the same DDL
// is valid on Postgres and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS app_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS instrument (
		instrument_token BIGINT PRIMARY KEY,
		exchange_token BIGINT,
		trading_symbol TEXT,
		name TEXT,
		instrument_type TEXT,
		segment TEXT,
		exchange TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS stocks (
		id BIGINT PRIMARY KEY,
		symbol TEXT UNIQUE,
		name TEXT,
		sector TEXT,
		segment TEXT,
		last_price DOUBLE PRECISION
	)`,
}

// -----------------------------------------------------------------------------

// Database implements interfaces.IDatabase on top of sqlx for either driver.
type Database struct {
	Config *models.MConfig
	DB     *sqlx.DB
	Logger *logger.Logger
	open   func() (*sqlx.DB, error)
}

// -----------------------------------------------------------------------------

// NewDatabase selects the driver from the storage config.
func NewDatabase(cfg *models.MConfig, log *logger.Logger) (*Database, error) {
	d := &Database{Config: cfg, Logger: log}

	switch cfg.Storage.DBType {
	case "postgres":
		d.open = func() (*sqlx.DB, error) { return openPostgres(cfg.Storage.DBConnectionString) }
	case "sqlite", "":
		d.open = func() (*sqlx.DB, error) { return openSQLite(cfg.Storage.DBPath, log) }
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Storage.DBType)
	}
	return d, nil
}

// -----------------------------------------------------------------------------

func (d *Database) Initialize() error {
	db, err := d.open()
	if err != nil {
		return err
	}
	d.DB = db

	for _, stmt := range schema {
		if _, err := d.DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	d.Logger.Info("Database initialized successfully (Driver: %s)", d.DB.DriverName())
	return nil
}

// -----------------------------------------------------------------------------

func (d *Database) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

func (d *Database) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.DB.GetContext(ctx, &value, d.DB.Rebind(`SELECT value FROM app_settings WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

// -----------------------------------------------------------------------------

func (d *Database) SetSetting(ctx context.Context, key, value string) error {
	query := d.DB.Rebind(`
		INSERT INTO app_settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`)
	if _, err := d.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Instruments and stocks
// -----------------------------------------------------------------------------

func (d *Database) ListInstruments(ctx context.Context, exchange string) ([]models.MInstrument, error) {
	query := `
		SELECT instrument_token,
		       COALESCE(exchange_token, 0) AS exchange_token,
		       COALESCE(trading_symbol, '') AS trading_symbol,
		       COALESCE(name, '') AS name,
		       COALESCE(instrument_type, '') AS instrument_type,
		       COALESCE(segment, '') AS segment,
		       COALESCE(exchange, '') AS exchange
		FROM instrument`
	var args []interface{}
	if exchange != "" {
		query += ` WHERE UPPER(exchange) = ?`
		args = append(args, strings.ToUpper(exchange))
	}
	query += ` ORDER BY instrument_token`

	var rows []models.MInstrument
	if err := d.DB.SelectContext(ctx, &rows, d.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	return rows, nil
}

// -----------------------------------------------------------------------------

func (d *Database) ListSegmentSymbols(ctx context.Context, segment string) ([]string, error) {
	var symbols []string
	query := d.DB.Rebind(`SELECT symbol FROM stocks WHERE segment = ? AND symbol IS NOT NULL ORDER BY id`)
	if err := d.DB.SelectContext(ctx, &symbols, query, segment); err != nil {
		return nil, fmt.Errorf("failed to list %s symbols: %w", segment, err)
	}
	return symbols, nil
}

// -----------------------------------------------------------------------------

// SaveInstruments upserts catalog rows in one transaction.
func (d *Database) SaveInstruments(ctx context.Context, instruments []models.MInstrument) error {
	if len(instruments) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO instrument (instrument_token, exchange_token, trading_symbol, name, instrument_type, segment, exchange)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (instrument_token) DO UPDATE SET
			exchange_token = excluded.exchange_token,
			trading_symbol = excluded.trading_symbol,
			name = excluded.name,
			instrument_type = excluded.instrument_type,
			segment = excluded.segment,
			exchange = excluded.exchange
	`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, i := range instruments {
		if _, err := stmt.ExecContext(ctx, i.InstrumentToken, i.ExchangeToken, i.TradingSymbol, i.Name, i.InstrumentType, i.Segment, i.Exchange); err != nil {
			return fmt.Errorf("failed to save instrument %s: %w", i.TradingSymbol, err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// SaveStocks upserts stocks rows keyed by symbol.
func (d *Database) SaveStocks(ctx context.Context, stocks []models.MStock) error {
	if len(stocks) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO stocks (id, symbol, name, sector, segment, last_price)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			segment = excluded.segment,
			last_price = excluded.last_price
	`)
	for _, s := range stocks {
		if _, err := tx.ExecContext(ctx, query, s.ID, s.Symbol, s.Name, s.Sector, s.Segment, s.LastPrice); err != nil {
			return fmt.Errorf("failed to save stock %s: %w", s.Symbol, err)
		}
	}

	return tx.Commit()
}
