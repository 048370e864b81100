// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"lifeline/internal/adapter/geoip"
	"lifeline/internal/adapter/revgeo"
	"lifeline/internal/adapter/storage"
	"lifeline/internal/config"
	"lifeline/internal/server"
	"lifeline/internal/service/directory"
	"lifeline/internal/service/locate"
	"lifeline/internal/service/session"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Persisted-location store; without Redis the resolver simply has no
	// persisted stage.
	var locationStore *storage.LocationStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, location persistence disabled")
		} else {
			locationStore = storage.NewLocationStore(rdb)
			defer rdb.Close()
		}
	}

	// Event bus
	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		natsConn, err = initNATS(cfg.NATS, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer natsConn.Close()
	}

	// Dataset source
	files := storage.NewFileDatasetStore(cfg.Dataset.MetadataPath, cfg.Dataset.HotlinesPath)
	var source directory.Source = files
	if cfg.Dataset.Source == config.DatasetSourcePostgres {
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize database")
		}
		defer db.Close()

		hotlineStore := storage.NewHotlineStore(db)
		if err := hotlineStore.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure dataset schema")
		}
		if cfg.Dataset.ImportOnStart {
			if err := importDatasets(ctx, files, hotlineStore); err != nil {
				logger.Fatal().Err(err).Msg("failed to import datasets")
			}
			logger.Info().Msg("datasets imported from files")
		}
		source = hotlineStore
	}

	// Load datasets and build the hierarchy index. Without data there is
	// nothing to serve and no fallback, so a failure here is fatal.
	catalog := directory.NewCatalog(source, natsConn, cfg.Events.Topic, logger)
	if err := catalog.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load datasets")
	}

	// GeoIP locator; absent database means live geolocation is unsupported.
	geoLocator, err := geoip.Open(cfg.Locate.GeoIPPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	if geoLocator != nil {
		defer geoLocator.Close()
	}

	// Reverse-geocode collaborator
	var geocoder locate.ReverseGeocoder
	if cfg.Locate.ReverseGeocodeURL != "" {
		geocoder = revgeo.NewClient(cfg.Locate.ReverseGeocodeURL)
	}

	// Resolver and filter-state manager share the store and event bus.
	var store locate.LocationStore
	if locationStore != nil {
		store = locationStore
	}
	resolver := locate.NewResolver(catalog, geocoder, store, natsConn, locate.ResolverConfig{
		LocateTimeout: cfg.Locate.Timeout,
		EventsTopic:   cfg.Events.Topic,
	}, logger)
	sessions := session.NewManager(catalog, store, natsConn, cfg.Events.Topic, logger)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		cfg.Events.Topic,
		natsConn,
		catalog,
		resolver,
		sessions,
		store,
		geoLocator,
	)

	// Start HTTP server
	go func() {
		logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info().Msg("shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("shutdown complete")
}

// importDatasets copies the file datasets into Postgres.
func importDatasets(ctx context.Context, files *storage.FileDatasetStore, store *storage.HotlineStore) error {
	meta, err := files.LoadMetadata(ctx)
	if err != nil {
		return err
	}
	hotlines, err := files.LoadHotlines(ctx)
	if err != nil {
		return err
	}
	return store.ImportDatasets(ctx, meta, hotlines)
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger zerolog.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info().Msg("NATS connection closed")
		}),
	}

	return nats.Connect(cfg.URL, options...)
}
