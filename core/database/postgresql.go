package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"slotpoll/core/config"
	"slotpoll/core/constants"
	"slotpoll/core/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type IDatabase interface {
	ExecContext(ctx context.Context, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	SQLx() *sqlx.DB
}

type Database struct {
	db   *sql.DB
	sqlx *sqlx.DB
}

var instance *Database

func GetDB() IDatabase {
	return instance
}

func InitDB(cfg config.DatabaseConfig) (Database, error) {
	logger.Info("Initializing database...")

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	sqlxDB, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return Database{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB := sqlxDB.DB
	sqlDB.SetMaxOpenConns(constants.DatabaseMaxOpenConns)
	sqlDB.SetMaxIdleConns(constants.DatabaseMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(constants.DatabaseConnMaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		return Database{}, fmt.Errorf("failed to ping database: %w", err)
	}

	db := Database{
		db:   sqlDB,
		sqlx: sqlxDB,
	}

	if err := db.bootstrapSchema(context.Background()); err != nil {
		logger.Error("Failed to bootstrap schema", "error", err)
		return Database{}, err
	}

	logger.Info("Database initialized successfully",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.DBName,
		"user", cfg.User,
		"maxOpenConns", constants.DatabaseMaxOpenConns,
		"maxIdleConns", constants.DatabaseMaxIdleConns,
		"connMaxLifetime", constants.DatabaseConnMaxLifetime,
	)

	instance = &db
	return db, nil
}

// bootstrapSchema creates the application tables when they do not exist.
// Vote rows cascade with their participant; deleting the rows is the
// ledger-clear path used when a participant is blocked.
func (d *Database) bootstrapSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS events (
			event_id        TEXT PRIMARY KEY,
			title           TEXT NOT NULL,
			event_type      TEXT NOT NULL,
			selected_dates  TEXT[] NOT NULL DEFAULT '{}',
			selected_days   INTEGER[] NOT NULL DEFAULT '{}',
			start_time      TEXT NOT NULL,
			end_time        TEXT NOT NULL,
			timezone        TEXT NOT NULL,
			organizer_name  TEXT NOT NULL,
			is_finalized    BOOLEAN NOT NULL DEFAULT FALSE,
			finalized_time  TEXT,
			voting_deadline TIMESTAMPTZ,
			locked_at       TIMESTAMPTZ,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			participant_id  UUID PRIMARY KEY,
			event_id        TEXT NOT NULL REFERENCES events(event_id) ON DELETE CASCADE,
			name            TEXT NOT NULL,
			normalized_name TEXT NOT NULL,
			ip_address      TEXT,
			is_blocked      BOOLEAN NOT NULL DEFAULT FALSE,
			joined_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (event_id, normalized_name)
		)`,
		`CREATE TABLE IF NOT EXISTS votes (
			vote_id        UUID PRIMARY KEY,
			event_id       TEXT NOT NULL REFERENCES events(event_id) ON DELETE CASCADE,
			participant_id UUID NOT NULL REFERENCES participants(participant_id) ON DELETE CASCADE,
			time_slot      TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (participant_id, time_slot)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_event ON votes(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_event ON participants(event_id)`,
	}

	for _, stmt := range statements {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) error {
	_, err := d.sqlx.ExecContext(ctx, query, args...)
	return err
}

func (d *Database) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.GetContext(ctx, dest, query, args...)
}

func (d *Database) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.SelectContext(ctx, dest, query, args...)
}

func (d *Database) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *Database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

func (d *Database) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return d.sqlx.BeginTxx(ctx, opts)
}

func (d *Database) SQLx() *sqlx.DB {
	return d.sqlx
}
