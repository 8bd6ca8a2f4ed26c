package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/phrazzld/gpa-ledger/internal/config"
	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/platform/database"
	"github.com/phrazzld/gpa-ledger/internal/platform/logger"
	"github.com/phrazzld/gpa-ledger/internal/platform/sqlstore"
	"github.com/phrazzld/gpa-ledger/internal/redact"
	"github.com/phrazzld/gpa-ledger/internal/service"
)

// Exit codes reported for each error kind.
const (
	exitOK          = 0
	exitFailure     = 1
	exitValidation  = 2
	exitCapacity    = 3
	exitState       = 4
	exitPersistence = 5
)

// application holds the shared dependencies of one gpa process and ensures
// proper cleanup on exit.
type application struct {
	// Global flags
	configFile string
	envFile    string
	target     float64
	logLevel   string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	config *config.Config
	logger *slog.Logger
	db     *database.Handle
	ledger *service.Ledger

	// inShell is set while the interactive shell is running.
	inShell bool

	cleanupOnce sync.Once
}

func newApplication(in io.Reader, out, errOut io.Writer) *application {
	return &application{
		envFile: ".env",
		in:      in,
		out:     out,
		errOut:  errOut,
	}
}

// setup loads configuration and opens the ledger on first use. Later calls,
// made by shell lines, only apply a changed --target.
func (app *application) setup(ctx context.Context, cmd *cobra.Command) error {
	targetChanged := false
	if f := cmd.Flag("target"); f != nil {
		targetChanged = f.Changed
	}
	if targetChanged && app.target <= 0 {
		return domain.NewValidationError("target", "credit target must be a positive number")
	}

	if app.ledger != nil {
		// Inside the shell the ledger is already open; --target still applies.
		if targetChanged {
			_, err := app.ledger.SetTarget(ctx, app.target)
			return err
		}
		return nil
	}

	overrides := map[string]any{}
	if targetChanged {
		overrides["ledger.target"] = app.target
	}
	if app.logLevel != "" {
		overrides["log.level"] = app.logLevel
	}

	cfg, err := config.Load(config.Options{
		ConfigFile: app.configFile,
		EnvFile:    app.envFile,
		Overrides:  overrides,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.config = cfg

	log, err := logger.Setup(cfg.Log, app.errOut)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	app.logger = log.With(slog.String("session_id", uuid.NewString()))

	app.db, err = database.Open(ctx, cfg.Database, app.logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	app.ledger, err = service.NewLedger(ctx,
		sqlstore.NewSQLCourseStore(app.db, app.logger),
		sqlstore.NewSQLCalculationStore(app.db, app.logger),
		app.logger,
		service.WithHistoryLimit(cfg.Ledger.HistoryLimit),
	)
	if err != nil {
		return err
	}

	if cfg.Ledger.Target > 0 {
		if _, err := app.ledger.SetTarget(ctx, cfg.Ledger.Target); err != nil {
			return err
		}
	}

	app.logger.Debug("gpa ledger ready",
		slog.String("driver", cfg.Database.Driver),
		slog.Float64("target", cfg.Ledger.Target))
	return nil
}

// cleanup releases the database handle. It is safe to call more than once.
func (app *application) cleanup() {
	app.cleanupOnce.Do(func() {
		if app.db == nil {
			return
		}
		if err := app.db.Release(); err != nil && app.logger != nil {
			app.logger.Error("error releasing database", slog.String("error", err.Error()))
		}
	})
}

// execute runs one command line and returns the process exit code.
func execute(ctx context.Context, app *application, args []string) int {
	defer app.cleanup()

	err := dispatch(ctx, app, args)
	if err != nil {
		fmt.Fprintf(app.errOut, "Error: %s\n", redact.Error(err))
	}
	return exitCode(err)
}

// dispatch builds a fresh command tree bound to app and runs args through it.
func dispatch(ctx context.Context, app *application, args []string) error {
	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetIn(app.in)
	root.SetOut(app.out)
	root.SetErr(app.errOut)
	return root.ExecuteContext(ctx)
}

// exitCode maps an error to the exit code of its kind.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrValidation):
		return exitValidation
	case errors.Is(err, domain.ErrCapacity):
		return exitCapacity
	case errors.Is(err, domain.ErrState):
		return exitState
	case errors.Is(err, domain.ErrPersistence), errors.Is(err, database.ErrHandleInUse):
		return exitPersistence
	default:
		return exitFailure
	}
}
