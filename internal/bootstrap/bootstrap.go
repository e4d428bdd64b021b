package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	appControllers "github.com/Nand2004/GeoConnect-sub000/internal/app/controllers"
	appMigrations "github.com/Nand2004/GeoConnect-sub000/internal/app/migrations"
	appRepos "github.com/Nand2004/GeoConnect-sub000/internal/app/repositories"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/repositories/memory"
	appRoutes "github.com/Nand2004/GeoConnect-sub000/internal/app/routes"
	appServices "github.com/Nand2004/GeoConnect-sub000/internal/app/services"
	"github.com/Nand2004/GeoConnect-sub000/internal/config"
	"github.com/Nand2004/GeoConnect-sub000/internal/db"
	appMiddleware "github.com/Nand2004/GeoConnect-sub000/internal/middleware"
	pkgAuth "github.com/Nand2004/GeoConnect-sub000/internal/pkg/auth"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/broadcast"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/helpers"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/logger"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/reconcile"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/tracing"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/validation"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/websocket"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services        *appServices.Services
	ChatController  *appControllers.ChatController
	EventController *appControllers.EventController
	UserController  *appControllers.UserController
	WSHandler       *websocket.Handler
	AuthMiddleware  *appMiddleware.AuthMiddleware
	Hub             *websocket.Hub
	Logger          zerolog.Logger

	closers []func(context.Context) error
}

// Close releases every resource opened by BuildDependencies, last opened first
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

func (d *Dependencies) onClose(fn func(context.Context) error) {
	d.closers = append(d.closers, fn)
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// BuildDependencies opens the stores and transports selected by cfg and wires
// services and controllers on top of them. The websocket hub is started and
// stops when ctx is cancelled or Close is called.
func BuildDependencies(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	built := false
	defer func() {
		if !built {
			_ = deps.Close(context.Background())
		}
	}()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Server.Mode,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	deps.onClose(func(ctx context.Context) error { return shutdownTracing(ctx) })

	repos, err := setupStores(ctx, cfg, lgr, deps)
	if err != nil {
		return nil, err
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	deps.Hub = websocket.NewHub(logger.WithField("component", "websocket"))
	go deps.Hub.Run(hubCtx)
	deps.onClose(func(context.Context) error { stopHub(); return nil })

	broadcaster, err := setupBroadcaster(ctx, cfg, lgr, deps)
	if err != nil {
		return nil, err
	}

	sink := setupReconcileSink(cfg, lgr, deps)

	deps.Services = appServices.New(repos, broadcaster, sink, appServices.Options{
		Chat: appServices.ChatConfig{
			RequireSenderMembership: cfg.Chat.RequireSenderMembership,
			Unread:                  appServices.UnreadPredicateFor(cfg.Chat.UnreadExcludesOwnMessages),
		},
		Coordinator: appServices.CoordinatorConfig{
			Consistency:        cfg.Membership.Consistency,
			SecondWriteRetries: cfg.Membership.SecondWriteRetries,
			RetryBackoff:       helpers.ParseDuration(cfg.Membership.RetryBackoff, 100*time.Millisecond),
		},
	}, lgr)

	var verifier *pkgAuth.Verifier
	if cfg.JWT.Enabled {
		verifier = pkgAuth.NewVerifier(pkgAuth.VerifierConfig{
			SecretKey:   cfg.JWT.Secret,
			TokenIssuer: cfg.JWT.Issuer,
		})
	}
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(verifier)

	deps.ChatController = appControllers.NewChatController(deps.Services.Chat)
	deps.EventController = appControllers.NewEventController(deps.Services.Event)
	deps.UserController = appControllers.NewUserController(deps.Services.User)
	deps.WSHandler = websocket.NewHandler(deps.Hub, logger.WithField("component", "websocket"))

	built = true
	return deps, nil
}

func setupStores(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, deps *Dependencies) (appRepos.Repositories, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		lgr.Warn().Msg("Using in-memory stores; data is lost on restart")
		return appRepos.Repositories{
			Chats:  memory.NewChatStore(),
			Events: memory.NewEventStore(),
			Users:  memory.NewUserStore(),
		}, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	postgres, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		return appRepos.Repositories{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.onClose(func(context.Context) error { postgres.Close(); return nil })

	lgr.Info().Str("path", cfg.Database.MigrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(postgres.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, cfg.Database.MigrationsDir); err != nil {
		return appRepos.Repositories{}, fmt.Errorf("database migrations failed: %w", err)
	}

	mongoDB, err := db.NewMongoDB(ctx, cfg)
	if err != nil {
		return appRepos.Repositories{}, err
	}
	deps.onClose(mongoDB.Close)

	timeout := helpers.ParseDuration(cfg.Mongo.Timeout, 5*time.Second)
	chats := appRepos.NewMongoChatRepository(mongoDB.Database, timeout)
	events := appRepos.NewMongoEventRepository(mongoDB.Database, timeout)
	if err := chats.EnsureIndexes(ctx); err != nil {
		return appRepos.Repositories{}, err
	}
	if err := events.EnsureIndexes(ctx); err != nil {
		return appRepos.Repositories{}, err
	}
	lgr.Info().Str("database", cfg.Mongo.Database).Msg("Document store ready")

	return appRepos.Repositories{
		Chats:  chats,
		Events: events,
		Users:  appRepos.NewPostgresUserRepository(postgres.Pool),
	}, nil
}

func setupBroadcaster(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, deps *Dependencies) (broadcast.Broadcaster, error) {
	if cfg.Broadcast.Driver != "redis" {
		return deps.Hub, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Broadcast.RedisAddr,
		Password: cfg.Broadcast.RedisPassword,
		DB:       cfg.Broadcast.RedisDB,
	})
	deps.onClose(func(context.Context) error { return client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	relay := broadcast.NewRedisRelay(client, cfg.Broadcast.Channel, deps.Hub, logger.WithField("component", "relay"))
	if err := relay.Start(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to subscribe to broadcast channel: %w", err)
	}
	deps.onClose(func(context.Context) error { return relay.Close() })
	lgr.Info().Str("channel", cfg.Broadcast.Channel).Msg("Broadcasting through redis")
	return relay, nil
}

func setupReconcileSink(cfg *config.Config, lgr zerolog.Logger, deps *Dependencies) reconcile.Sink {
	sinkLogger := logger.WithField("component", "reconcile")
	if cfg.Reconcile.Driver != "kafka" {
		return reconcile.NewLogSink(sinkLogger)
	}

	sink := reconcile.NewKafkaSink(cfg.KafkaBrokerList(), cfg.Reconcile.KafkaTopic, sinkLogger)
	deps.onClose(func(context.Context) error { return sink.Close() })
	lgr.Info().Str("topic", cfg.Reconcile.KafkaTopic).Msg("Publishing reconciliation signals to kafka")
	return sink
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	validation.RegisterGinValidators()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(logger.WithField("component", "http")),
		appMiddleware.CORS(cfg.CORSOrigins()),
	)
	if cfg.Metrics.Enabled {
		router.Use(appMiddleware.Metrics())
	}

	appRoutes.SetupRouter(router,
		deps.ChatController,
		deps.EventController,
		deps.UserController,
		deps.WSHandler,
		deps.AuthMiddleware,
		appRoutes.Options{
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsPath:    cfg.Metrics.Path,
		},
	)

	return router
}

// Handler wraps the router with server-side tracing when enabled
func Handler(cfg *config.Config, router *gin.Engine) http.Handler {
	if !cfg.Tracing.Enabled {
		return router
	}
	return otelhttp.NewHandler(router, cfg.Tracing.ServiceName)
}
