// Package database owns the process-wide connection to the ledger's backing
// store. A Handle is opened once per data source, applies the embedded
// baseline schema with goose, and transparently reopens its connection after
// Close. Both SQLite (github.com/mattn/go-sqlite3) and PostgreSQL
// (github.com/jackc/pgx/v5) are supported through database/sql.
package database
