// Package sqlstore implements the store interfaces on top of database/sql.
// The same queries run against SQLite (github.com/mattn/go-sqlite3) and
// PostgreSQL (github.com/jackc/pgx/v5); placeholders are written as $1..$n
// and each is used exactly once, in order, which both drivers bind by position.
//
// The stores accept a store.DBTX, so they work with the reopening database
// handle, a *sql.DB or a *sql.Tx.
package sqlstore
