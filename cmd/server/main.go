// Package main implements the entry point for the Taktplan API server,
// a task board backend where managers assign work to employees.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/taktplan/internal/config"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/platform/postgres"
	"github.com/spf13/pflag"
)

// options are the command line flags of the server.
type options struct {
	configPath string
	migrate    string
	seed       bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "taktplan: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options

	fs := pflag.NewFlagSet("taktplan", pflag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default ./config.yaml if present)")
	fs.StringVar(&opts.migrate, "migrate", "", "run a migration command (up, down, status, version, reset) and exit")
	fs.BoolVar(&opts.seed, "seed", false, "create the default manager and employee accounts before serving")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.migrate != "" && !postgres.IsMigrationCommand(opts.migrate) {
		return options{}, fmt.Errorf("invalid --migrate value %q", opts.migrate)
	}
	return opts, nil
}

// run loads configuration, connects to the database and either runs the
// requested migration or serves HTTP until interrupted.
func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("upload_dir", cfg.Storage.UploadDir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	if opts.migrate != "" {
		return postgres.Migrate(ctx, db, opts.migrate, log)
	}

	deps, err := postgresDependencies(cfg, db, log)
	if err != nil {
		return err
	}
	app, err := newApplication(cfg, log, deps)
	if err != nil {
		return err
	}

	if opts.seed || cfg.Seed.Enabled {
		if err := seedUsers(ctx, app.userService, cfg.Seed, log); err != nil {
			return err
		}
	}

	return app.Run(ctx)
}
