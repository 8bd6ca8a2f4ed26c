package testdb

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/gpa-ledger/internal/config"
	"github.com/phrazzld/gpa-ledger/internal/platform/database"
	"github.com/phrazzld/gpa-ledger/internal/platform/logger"
	"github.com/phrazzld/gpa-ledger/internal/redact"
	"github.com/phrazzld/gpa-ledger/internal/store"
)

// EnvTestDatabaseURL names the PostgreSQL server used by integration tests.
const EnvTestDatabaseURL = "GPA_TEST_DATABASE_URL"

// resetTables lists every table emptied by Reset, children first.
var resetTables = []string{"courses", "calculations"}

// ShouldSkipDatabaseTest reports whether no PostgreSQL server is configured.
func ShouldSkipDatabaseTest() bool {
	return os.Getenv(EnvTestDatabaseURL) == ""
}

// OpenSQLite opens a fresh SQLite database in a temporary directory. The
// handle logs through a test logger and is released when the test ends.
func OpenSQLite(t *testing.T) *database.Handle {
	t.Helper()

	log, _ := logger.GetTestLogger(t)
	return open(t, config.DatabaseConfig{
		Driver: database.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "gpa_test.db"),
	}, log)
}

// OpenPostgres connects to the server named by GPA_TEST_DATABASE_URL and
// empties every table before and after the test. The test is skipped when
// the variable is unset.
func OpenPostgres(t *testing.T) *database.Handle {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skipf("%s not set", EnvTestDatabaseURL)
	}

	url := os.Getenv(EnvTestDatabaseURL)
	log, _ := logger.GetTestLogger(t)
	log.Debug("connecting to test database", slog.String("url", redact.String(url)))

	h := open(t, config.DatabaseConfig{Driver: database.DriverPgx, URL: url}, log)
	Reset(t, h)
	t.Cleanup(func() { Reset(t, h) })
	return h
}

func open(t *testing.T, cfg config.DatabaseConfig, log *slog.Logger) *database.Handle {
	t.Helper()

	h, err := database.Open(context.Background(), cfg, log)
	require.NoError(t, err, "failed to open test database %s", redact.String(cfg.URL))

	// Cleanups run last-in first-out, so this runs after any Reset.
	t.Cleanup(func() {
		if err := h.Release(); err != nil {
			t.Logf("failed to release test database: %v", err)
		}
	})
	return h
}

// Reset deletes every row from the ledger tables.
func Reset(t *testing.T, db store.DBTX) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, table := range resetTables {
		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "failed to reset table %s", table)
	}
}

// WithTx runs fn inside a transaction that is rolled back afterwards, so
// nothing fn writes outlives it.
func WithTx(t *testing.T, db store.TxBeginner, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
