package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Ledger   LedgerConfig   `mapstructure:"ledger" validate:"required"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the database/sql driver: "sqlite3" for a local file,
	// "pgx" for PostgreSQL.
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite3 pgx"`
	// URL is a file path for sqlite3 or a connection URL for pgx.
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// LedgerConfig contains defaults for the course ledger.
type LedgerConfig struct {
	// Target is the credit target declared at startup; 0 leaves it unset.
	Target       float64 `mapstructure:"target" validate:"gte=0"`
	HistoryLimit int     `mapstructure:"history_limit" validate:"gt=0"`
}
