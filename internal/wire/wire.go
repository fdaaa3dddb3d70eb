// Package wire provides dependency injection for the routecard application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	cliadapter "github.com/example/routecard/internal/adapters/cli"
	"github.com/example/routecard/internal/adapters/filesystem"
	"github.com/example/routecard/internal/adapters/httpapi"
	"github.com/example/routecard/internal/adapters/memory"
	redisstore "github.com/example/routecard/internal/adapters/redis"
	"github.com/example/routecard/internal/adapters/remote"
	"github.com/example/routecard/internal/adapters/sqlite"
	"github.com/example/routecard/internal/app"
	"github.com/example/routecard/internal/config"
	"github.com/example/routecard/internal/db"
	"github.com/example/routecard/internal/logging"
	"github.com/example/routecard/internal/metrics"
	"github.com/example/routecard/internal/ports/primary"
	"github.com/example/routecard/internal/ports/secondary"
)

var (
	configPath string

	cfg            *config.Config
	logger         *zap.Logger
	registry       *prometheus.Registry
	repo           *app.CardRepository
	cardService    primary.CardService
	catalogService primary.CatalogService
	dataService    primary.DataService
	authService    primary.AuthService
	sqliteStore    *sqlite.CollectionStore
	sqliteDB       *sql.DB
	closers        []func() error
	once           sync.Once
)

// SetConfigPath selects the config file. It must be called before any
// service is requested.
func SetConfigPath(path string) {
	configPath = path
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the shared zap logger.
func Logger() *zap.Logger {
	once.Do(initServices)
	return logger
}

// Repository returns the singleton card repository.
func Repository() *app.CardRepository {
	once.Do(initServices)
	return repo
}

// CardService returns the singleton CardService instance.
func CardService() primary.CardService {
	once.Do(initServices)
	return cardService
}

// CatalogService returns the singleton CatalogService instance.
func CatalogService() primary.CatalogService {
	once.Do(initServices)
	return catalogService
}

// DataService returns the singleton DataService instance.
func DataService() primary.DataService {
	once.Do(initServices)
	return dataService
}

// AuthService returns the singleton AuthService instance.
func AuthService() primary.AuthService {
	once.Do(initServices)
	return authService
}

// SchemaVersion reports the sqlite schema version when the sqlite driver is in use.
func SchemaVersion() (int, bool, error) {
	once.Do(initServices)
	if sqliteDB == nil {
		return 0, false, nil
	}
	v, err := db.CurrentVersion(sqliteDB)
	return v, true, err
}

// SaveHistory returns recent saves when the sqlite driver is in use.
func SaveHistory(ctx context.Context, limit int) ([]sqlite.SaveRecord, bool, error) {
	once.Do(initServices)
	if sqliteStore == nil {
		return nil, false, nil
	}
	records, err := sqliteStore.History(ctx, limit)
	return records, true, err
}

// Close releases store connections and flushes the logger.
func Close() {
	for _, c := range closers {
		_ = c()
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err = logging.NewLogger(cfg.Log.Level, cfg.Log.Format, "routecard")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, err := newStore(cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize %s store: %v", cfg.Storage.Driver, err)
	}

	repo = app.NewCardRepository(store, logger, app.WithMetrics(metrics.New(registry)))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repo.Load(ctx, app.SeedOptions{Defaults: true, Demo: cfg.SeedDemo}); err != nil {
		log.Fatalf("failed to load cards from %s store: %v", cfg.Storage.Driver, err)
	}

	cardService = app.NewCardService(repo, logger)
	catalogService = app.NewCatalogService(repo)
	dataService = app.NewDataService(repo, logger, cfg.HTTP.MaxAttachmentBytes)
	authService = app.NewAuthService(repo, logger, app.AuthOptions{
		DefaultUser:     cfg.Auth.DefaultUser,
		DefaultPassword: cfg.Auth.DefaultPassword,
		Iterations:      cfg.Auth.Iterations,
	})
}

// newStore builds the collection store selected by cfg.Storage.Driver.
func newStore(cfg *config.Config, logger *zap.Logger) (secondary.CollectionStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		conn, err := db.Open(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, err
		}
		closers = append(closers, conn.Close)
		sqliteDB = conn
		sqliteStore = sqlite.NewCollectionStore(conn)
		return sqliteStore, nil
	case config.DriverFile:
		return filesystem.NewCollectionStore(cfg.Storage.File.Path), nil
	case config.DriverRedis:
		client := redisstore.NewClient(cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		store := redisstore.NewCollectionStore(client, cfg.Storage.Redis.Key)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		closers = append(closers, store.Close)
		return store, nil
	case config.DriverRemote:
		return remote.NewCollectionStore(cfg.Storage.Remote.URL, cfg.Storage.Remote.Password, logger), nil
	case config.DriverMemory:
		return memory.NewCollectionStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// HTTPServer returns a configured API server. The default account is
// created first when a default password is configured.
func HTTPServer() *httpapi.Server {
	once.Do(initServices)
	if cfg.Auth.DefaultPassword != "" {
		if err := authService.EnsureDefaultUser(context.Background()); err != nil {
			log.Fatalf("failed to create default user: %v", err)
		}
	} else {
		logger.Warn("auth.default_password is not set; only existing users can log in")
	}
	return httpapi.NewServer(httpapi.Config{
		Cards:        cardService,
		Data:         dataService,
		Auth:         authService,
		Logger:       logger,
		Gatherer:     registry,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})
}

// CardAdapter returns a new CardAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func CardAdapter() *cliadapter.CardAdapter {
	return CardAdapterWithOutput(os.Stdout)
}

// CardAdapterWithOutput returns a new CardAdapter writing to the given output.
func CardAdapterWithOutput(out io.Writer) *cliadapter.CardAdapter {
	once.Do(initServices)
	return cliadapter.NewCardAdapter(cardService, out)
}

// CatalogAdapter returns a new CatalogAdapter writing to stdout.
func CatalogAdapter() *cliadapter.CatalogAdapter {
	once.Do(initServices)
	return cliadapter.NewCatalogAdapter(catalogService, os.Stdout)
}
