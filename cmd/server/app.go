package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/config"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/events"
	"github.com/phrazzld/blog-api/internal/platform/imaging"
	"github.com/phrazzld/blog-api/internal/platform/kafka"
	"github.com/phrazzld/blog-api/internal/platform/postgres"
	"github.com/phrazzld/blog-api/internal/platform/session"
	"github.com/phrazzld/blog-api/internal/platform/storage"
	"github.com/phrazzld/blog-api/internal/platform/telemetry"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/service/auth"
	"github.com/phrazzld/blog-api/internal/store"
)

// application holds the shared dependencies and releases them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	blobs     storage.BlobStore
	sessions  session.Registry
	emitter   *events.Dispatcher
	telemetry *telemetry.Provider

	// closers run in reverse order on cleanup
	closers []io.Closer

	authService     service.AuthService
	categoryService service.CategoryService
	tagService      service.TagService
	postService     service.PostService
	mediaService    service.MediaService
	userService     *service.UserServiceImpl
	profileService  service.ProfileService
}

// newApplication creates every store, backend and service. db must already
// be connected.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}
	if err := app.init(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (app *application) init(ctx context.Context) error {
	cfg, logger := app.config, app.logger

	var err error
	app.telemetry, err = telemetry.Setup(ctx, cfg.Telemetry, cfg.Server.Version, nil)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}

	if app.blobs, err = newBlobStore(ctx, cfg.Storage, logger); err != nil {
		return err
	}
	if app.sessions, err = app.newSessionRegistry(ctx); err != nil {
		return err
	}

	app.emitter = events.NewDispatcher(logger)
	app.emitter.Subscribe(events.NewBlobCleanupHandler(app.blobs, logger), events.BlobEventTypes...)
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.Kafka, logger)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, publisher)
		app.emitter.Subscribe(events.NewForwardingHandler(publisher))
		logger.Info("forwarding content events to kafka", slog.String("topic", cfg.Kafka.Topic))
	}

	tokens, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize session token service: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)

	users := postgres.NewPostgresUserStore(app.db, logger)
	media := postgres.NewPostgresMediaFileStore(app.db, logger)
	categories := postgres.NewPostgresCategoryStore(app.db, logger)
	tags := postgres.NewPostgresTagStore(app.db, logger)
	posts := postgres.NewPostgresPostStore(app.db, logger)

	if app.authService, err = service.NewAuthService(users, hasher, tokens, app.sessions, logger); err != nil {
		return err
	}
	if app.categoryService, err = service.NewCategoryService(categories, media, app.emitter, logger); err != nil {
		return err
	}
	if app.tagService, err = service.NewTagService(tags, logger); err != nil {
		return err
	}
	if app.postService, err = service.NewPostService(posts, categories, tags, app.emitter, logger); err != nil {
		return err
	}
	if app.mediaService, err = service.NewMediaService(posts, media, app.blobs, imaging.NewDecoder(), app.emitter, logger); err != nil {
		return err
	}
	if app.userService, err = service.NewUserService(users, media, hasher, app.sessions, app.emitter, logger); err != nil {
		return err
	}
	app.profileService, err = service.NewProfileService(
		postgres.NewPostgresProfileStore(app.db, logger),
		postgres.NewPostgresSocialAccountStore(app.db, logger),
		app.blobs, app.emitter, logger)
	if err != nil {
		return err
	}

	if err := bootstrapAdmin(ctx, app.userService, users, cfg.Bootstrap, logger); err != nil {
		return err
	}

	logger.Info("application initialized")
	return nil
}

// newBlobStore selects MinIO when an endpoint is configured and process
// memory otherwise.
func newBlobStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.BlobStore, error) {
	if cfg.Endpoint == "" {
		logger.Warn("no storage endpoint configured, media is kept in memory")
		return storage.NewMemoryStore(cfg.PublicURL), nil
	}
	blobs, err := storage.NewMinIOStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect object storage: %w", err)
	}
	return blobs, nil
}

// newSessionRegistry selects Redis when an address is configured and
// process memory otherwise.
func (app *application) newSessionRegistry(ctx context.Context) (session.Registry, error) {
	if app.config.Redis.Addr == "" {
		app.logger.Warn("no redis address configured, sessions are kept in memory")
		return session.NewMemoryRegistry(), nil
	}
	client, err := session.NewRedisClient(ctx, app.config.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	app.closers = append(app.closers, client)
	return session.NewRedisRegistry(client, app.logger), nil
}

// adminCreator registers admin accounts.
type adminCreator interface {
	CreateAdmin(ctx context.Context, in service.UserInput) (*domain.User, error)
}

// bootstrapAdmin ensures the configured admin account exists. It does
// nothing when no admin username is configured.
func bootstrapAdmin(
	ctx context.Context,
	creator adminCreator,
	users store.UserStore,
	cfg config.BootstrapConfig,
	logger *slog.Logger,
) error {
	if cfg.AdminUsername == "" {
		return nil
	}

	_, err := users.GetByUsername(ctx, cfg.AdminUsername)
	switch {
	case err == nil:
		logger.Debug("bootstrap admin already exists", slog.String("username", cfg.AdminUsername))
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	u, err := creator.CreateAdmin(ctx, service.UserInput{
		Username: &cfg.AdminUsername,
		Email:    &cfg.AdminEmail,
		Password: &cfg.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	logger.Info("bootstrap admin created", slog.Int64("user_id", u.ID), slog.String("username", u.Username))
	return nil
}

// Run serves HTTP until ctx is cancelled and then releases every resource.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error("failed to close resource", slog.String("error", err.Error()))
		}
	}
	if app.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.telemetry.Shutdown(ctx); err != nil {
			app.logger.Error("failed to flush traces", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
