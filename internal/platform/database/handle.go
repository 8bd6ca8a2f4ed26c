package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	// Drivers registered with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/phrazzld/gpa-ledger/internal/config"
	"github.com/phrazzld/gpa-ledger/internal/platform/logger"
	"github.com/phrazzld/gpa-ledger/internal/redact"
	"github.com/phrazzld/gpa-ledger/internal/store"
)

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite3"
	DriverPgx    = "pgx"
)

const (
	// sqliteParams is appended to SQLite file paths that carry no query string.
	sqliteParams = "_busy_timeout=5000&_foreign_keys=on"

	// defaultMaxOpenConns applies to PostgreSQL when the configuration leaves it at 0.
	defaultMaxOpenConns = 5

	pingTimeout = 5 * time.Second
)

// ErrHandleInUse is returned by Open when another handle in this process
// already owns the data source.
var ErrHandleInUse = errors.New("database already opened by another handle")

// claims records every data source owned by a live handle.
var (
	claimsMu sync.Mutex
	claims   = make(map[string]struct{})
)

// Handle is the single owner of a data source within the process.
//
// Close releases the underlying connection pool but keeps the handle usable:
// the next access reopens it. Release closes the pool and gives up ownership
// so that a new handle may be opened on the same source.
type Handle struct {
	mu       sync.Mutex
	driver   string
	dsn      string
	source   string
	maxOpen  int
	db       *sql.DB
	closed   bool
	released bool
	logger   *slog.Logger
}

// Ensure Handle can be used wherever a connection or transaction starter is expected.
var (
	_ store.DBTX       = (*Handle)(nil)
	_ store.TxBeginner = (*Handle)(nil)
)

// Open connects to the configured data source, applies the baseline schema and
// claims the source for this process. It returns ErrHandleInUse if the source
// is already owned by another handle.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*Handle, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "database"))

	dsn, source, err := resolveSource(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, err
	}

	if err := claim(source); err != nil {
		return nil, err
	}

	h := &Handle{
		driver:  cfg.Driver,
		dsn:     dsn,
		source:  source,
		maxOpen: cfg.MaxOpenConns,
		logger:  log,
	}

	db, err := h.connect(ctx)
	if err != nil {
		unclaim(source)
		return nil, err
	}
	h.db = db

	log.Info("database opened",
		slog.String("driver", cfg.Driver),
		slog.String("source", redact.String(source)))
	return h, nil
}

// Driver returns the database/sql driver name of the handle.
func (h *Handle) Driver() string {
	return h.driver
}

// DB returns the live connection pool, reopening it first if the handle was
// closed. When reopening fails the closed pool is returned together with the
// error, so callers that ignore the error still get a usable value whose
// operations fail.
func (h *Handle) DB(ctx context.Context) (*sql.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return h.db, fmt.Errorf("%w: database handle has been released", store.ErrUnavailable)
	}
	if !h.closed {
		return h.db, nil
	}

	db, err := h.connect(ctx)
	if err != nil {
		return h.db, err
	}
	h.db = db
	h.closed = false

	h.logger.Debug("database reopened")
	return h.db, nil
}

// Close closes the connection pool. The handle keeps ownership of its data
// source and reopens on next use. Closing an already closed handle is a no-op.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeLocked()
}

// Release closes the connection pool and frees the data source so another
// handle may open it. The handle cannot be used afterwards.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil
	}
	err := h.closeLocked()
	h.released = true
	unclaim(h.source)

	h.logger.Debug("database released")
	return err
}

func (h *Handle) closeLocked() error {
	if h.closed || h.db == nil {
		return nil
	}
	h.closed = true
	if err := h.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// ExecContext implements store.DBTX.
func (h *Handle) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db, err := h.DB(ctx)
	if err != nil {
		return nil, err
	}
	return db.ExecContext(ctx, query, args...)
}

// PrepareContext implements store.DBTX.
func (h *Handle) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	db, err := h.DB(ctx)
	if err != nil {
		return nil, err
	}
	return db.PrepareContext(ctx, query)
}

// QueryContext implements store.DBTX.
func (h *Handle) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db, err := h.DB(ctx)
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, query, args...)
}

// QueryRowContext implements store.DBTX. If the handle cannot be reopened the
// returned row reports the closed database when scanned.
func (h *Handle) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	db, err := h.DB(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, h.logger).Error("failed to reopen database",
			slog.String("error", err.Error()))
	}
	return db.QueryRowContext(ctx, query, args...)
}

// BeginTx implements store.TxBeginner.
func (h *Handle) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	db, err := h.DB(ctx)
	if err != nil {
		return nil, err
	}
	return db.BeginTx(ctx, opts)
}

// connect opens a pool, verifies it and applies the baseline schema.
func (h *Handle) connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(h.driver, h.dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", store.ErrUnavailable, err)
	}

	if h.driver == DriverSQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY
		// between pooled connections and keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
	} else {
		maxOpen := h.maxOpen
		if maxOpen == 0 {
			maxOpen = defaultMaxOpenConns
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
		db.SetConnMaxLifetime(time.Hour)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %w", store.ErrUnavailable, err)
	}

	if err := Migrate(ctx, db, h.driver, h.logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// resolveSource builds the driver DSN and the key under which the data
// source is claimed. In-memory SQLite databases are private to their
// connection and are never claimed.
func resolveSource(driver, url string) (dsn, source string, err error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", "", errors.New("database url cannot be empty")
	}

	switch driver {
	case DriverSQLite:
		if isMemory(url) {
			return url, "", nil
		}
		path, query, hasQuery := strings.Cut(strings.TrimPrefix(url, "file:"), "?")
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", "", fmt.Errorf("failed to resolve database path %q: %w", path, err)
		}
		if dir := filepath.Dir(abs); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", "", fmt.Errorf("failed to create database directory %q: %w", dir, err)
			}
		}
		if !hasQuery {
			query = sqliteParams
		}
		return "file:" + abs + "?" + query, driver + ":" + abs, nil
	case DriverPgx:
		return url, driver + ":" + url, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// isMemory reports whether url names an in-memory SQLite database, either
// as ":memory:" (optionally with the file: prefix) or through mode=memory.
func isMemory(url string) bool {
	path, query, _ := strings.Cut(strings.TrimPrefix(url, "file:"), "?")
	return path == ":memory:" || strings.Contains(query, "mode=memory")
}

func claim(source string) error {
	if source == "" {
		return nil
	}
	claimsMu.Lock()
	defer claimsMu.Unlock()
	if _, ok := claims[source]; ok {
		return fmt.Errorf("%w: %s", ErrHandleInUse, redact.String(source))
	}
	claims[source] = struct{}{}
	return nil
}

func unclaim(source string) {
	if source == "" {
		return
	}
	claimsMu.Lock()
	defer claimsMu.Unlock()
	delete(claims, source)
}
