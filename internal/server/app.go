// Package server wires configuration, storage, archiving and the gRPC
// endpoint into a runnable metakeeper server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/archive"
	"github.com/dmitrijs2005/metakeeper/internal/server/config"
	"github.com/dmitrijs2005/metakeeper/internal/server/handlers"
	"github.com/dmitrijs2005/metakeeper/internal/server/omclient"
	"github.com/dmitrijs2005/metakeeper/internal/server/repositories/repomanager"

	gs "github.com/dmitrijs2005/metakeeper/internal/server/grpc"
)

// seams for tests
var (
	openPostgres = repomanager.OpenPostgres
	newArchiver  = func(ctx context.Context, c archive.S3Config) (archive.Archiver, error) {
		return archive.NewS3Archiver(ctx, c)
	}
	logOutput io.Writer = os.Stdout
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	registry *handlers.Registry
	db       *sql.DB
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(logOutput, c.LogLevel)

	archiver, err := buildArchiver(ctx, c)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger}

	var client omclient.OpenMetadataClient
	switch c.StoreKind {
	case config.StoreMemory:
		client = omclient.NewMemoryClient(archiver, c.MaxPageSize)
	case config.StorePostgres:
		db, err := openPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db migrations error: %w", err)
		}
		app.db = db
		client = omclient.NewStoreClient(db, rm, archiver, logger, c.MaxPageSize)
	default:
		return nil, fmt.Errorf("unknown store kind %q", c.StoreKind)
	}

	app.registry = handlers.NewRegistry(client, logger, c.MaxPageSize)
	return app, nil
}

func buildArchiver(ctx context.Context, c *config.Config) (archive.Archiver, error) {
	if c.S3Bucket == "" {
		return archive.NopArchiver{}, nil
	}
	a, err := newArchiver(ctx, archive.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("archive init error: %w", err)
	}
	return a, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.registry, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreKind, "categories", app.registry.Categories())

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(ctx, "closing database", "error", err)
		}
	}
	app.logger.Info(ctx, "app stopped")
	return runErr
}
