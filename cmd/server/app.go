package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taktplan/internal/config"
	"github.com/phrazzld/taktplan/internal/platform/filestore"
	"github.com/phrazzld/taktplan/internal/platform/postgres"
	"github.com/phrazzld/taktplan/internal/service"
	"github.com/phrazzld/taktplan/internal/service/auth"
	"github.com/phrazzld/taktplan/internal/store"
)

// dependencies are the storage backends the services run on.
type dependencies struct {
	users       store.UserStore
	tasks       store.TaskStore
	attachments store.AttachmentStore
	blobs       store.BlobStore
	transactor  store.Transactor
}

// postgresDependencies backs metadata with PostgreSQL and attachment bytes
// with the configured upload directory.
func postgresDependencies(cfg *config.Config, db *sql.DB, logger *slog.Logger) (dependencies, error) {
	blobs, err := filestore.New(cfg.Storage.UploadDir, logger)
	if err != nil {
		return dependencies{}, fmt.Errorf("failed to initialize upload storage: %w", err)
	}

	return dependencies{
		users:       postgres.NewPostgresUserStore(db, logger),
		tasks:       postgres.NewPostgresTaskStore(db, logger),
		attachments: postgres.NewPostgresAttachmentStore(db, logger),
		blobs:       blobs,
		transactor:  store.NewDBTransactor(db),
	}, nil
}

// application holds the shared dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	jwtService        auth.JWTService
	userService       service.UserService
	taskService       service.TaskService
	attachmentService service.AttachmentService
}

// newApplication wires the services on top of deps.
func newApplication(cfg *config.Config, logger *slog.Logger, deps dependencies) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.userService, err = service.NewUserService(deps.users, deps.transactor, hasher, hasher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.attachmentService, err = service.NewAttachmentService(
		deps.tasks,
		deps.attachments,
		deps.blobs,
		deps.transactor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment service: %w", err)
	}

	app.taskService, err = service.NewTaskService(
		deps.tasks,
		deps.users,
		app.attachmentService,
		deps.transactor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
