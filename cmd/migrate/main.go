// Command migrate manages the orders schema outside the server process.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/orderimport/backend/internal/infrastructure/config"
	"github.com/orderimport/backend/internal/infrastructure/logger"
	"github.com/orderimport/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var errUsage = errors.New("usage")

type options struct {
	dir      string
	embedded bool
	args     []string
	log      *zap.Logger
}

// schemaCommand runs against an open migrator
type schemaCommand func(m *migration.Migrator, opts options) error

var schemaCommands = map[string]schemaCommand{
	"up":      func(m *migration.Migrator, _ options) error { return m.Up() },
	"down":    func(m *migration.Migrator, _ options) error { return m.Down() },
	"step":    runStep,
	"goto":    runGoTo,
	"version": runVersion,
	"force":   runForce,
	"drop":    runDrop,
}

func main() {
	var (
		dir      string
		logLevel string
		embedded bool
	)
	flag.StringVar(&dir, "path", "", "Migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&embedded, "embedded", false, "Use the migrations compiled into this binary")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	opts := options{
		dir:      resolveDir(dir),
		embedded: embedded,
		args:     args[1:],
		log:      log,
	}

	if err := run(args[0], opts); err != nil {
		if errors.Is(err, errUsage) {
			log.Error(err.Error(), zap.String("command", args[0]))
			printUsage()
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(command string, opts options) error {
	opts.log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", opts.dir),
		zap.Bool("embedded", opts.embedded),
	)

	switch command {
	case "create":
		return runCreate(opts)
	case "list":
		return runList(opts)
	}

	cmd, ok := schemaCommands[command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if opts.embedded {
		m, err = migration.NewEmbedded(db, opts.log)
	} else {
		m, err = migration.New(db, opts.dir, opts.log)
	}
	if err != nil {
		return err
	}
	defer m.Close()

	return cmd(m, opts)
}

// resolveDir looks for ./migrations, then for one two levels above the binary
func resolveDir(dir string) string {
	if dir == "" {
		dir = defaultMigrationsDir
		if _, err := os.Stat(dir); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsDir)
				if _, err := os.Stat(candidate); err == nil {
					dir = candidate
				}
			}
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func runCreate(opts options) error {
	if len(opts.args) == 0 {
		return fmt.Errorf("%w: migrate create <name> [description]", errUsage)
	}
	var description string
	if len(opts.args) > 1 {
		description = opts.args[1]
	}

	mf, err := migration.CreateMigration(opts.dir, opts.args[0], description)
	if err != nil {
		return err
	}
	opts.log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(opts options) error {
	names, err := migration.ListMigrations(opts.dir)
	if err != nil {
		return err
	}
	opts.log.Info("Available migrations", zap.Int("count", len(names)))
	for _, name := range names {
		fmt.Println("  -", name)
	}
	return nil
}

func runStep(m *migration.Migrator, opts options) error {
	if len(opts.args) == 0 {
		return fmt.Errorf("%w: migrate step <n>", errUsage)
	}
	n, err := strconv.Atoi(opts.args[0])
	if err != nil {
		return fmt.Errorf("%w: invalid step count %q", errUsage, opts.args[0])
	}
	return m.Steps(n)
}

func runGoTo(m *migration.Migrator, opts options) error {
	if len(opts.args) == 0 {
		return fmt.Errorf("%w: migrate goto <version>", errUsage)
	}
	v, err := strconv.ParseUint(opts.args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("%w: invalid version %q", errUsage, opts.args[0])
	}
	return m.GoTo(uint(v))
}

func runVersion(m *migration.Migrator, opts options) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if v == 0 {
		opts.log.Info("No migrations applied")
		return nil
	}
	opts.log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	return nil
}

func runForce(m *migration.Migrator, opts options) error {
	if len(opts.args) == 0 {
		return fmt.Errorf("%w: migrate force <version>", errUsage)
	}
	v, err := strconv.Atoi(opts.args[0])
	if err != nil {
		return fmt.Errorf("%w: invalid version %q", errUsage, opts.args[0])
	}
	opts.log.Warn("Forcing migration version", zap.Int("version", v))
	return m.Force(v)
}

func runDrop(m *migration.Migrator, opts options) error {
	for _, arg := range opts.args {
		if arg == "-confirm" || arg == "--confirm" {
			return m.Drop()
		}
	}
	return fmt.Errorf("%w: drop removes every table in the orders database; rerun with -confirm", errUsage)
}

func printUsage() {
	fmt.Println(`Order import schema migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the current version
  force <version>       Set the version without running migrations
  drop -confirm         Drop all tables
  create <name> [desc]  Create an up/down migration pair
  list                  List migrations on disk

Flags:
  -path string          Migrations directory (default: ./migrations)
  -log-level string     debug, info, warn, error (default: info)
  -embedded             Use the migrations compiled into the binary

Environment:
  OIMP_DATABASE_HOST, OIMP_DATABASE_PORT, OIMP_DATABASE_USER,
  OIMP_DATABASE_PASSWORD, OIMP_DATABASE_DBNAME, OIMP_DATABASE_SSLMODE`)
}
