package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/famvault/server/cmd/server/docs" // swagger docs

	"github.com/famvault/server/internal/adapter/inbound/httpapi"
	"github.com/famvault/server/internal/adapter/outbound/aiprovider"
	"github.com/famvault/server/internal/adapter/outbound/notify"
	"github.com/famvault/server/internal/adapter/outbound/s3"
	"github.com/famvault/server/internal/domain/ai"
	"github.com/famvault/server/internal/domain/family"
	"github.com/famvault/server/internal/domain/notification"
	"github.com/famvault/server/internal/domain/record"
	"github.com/famvault/server/internal/domain/user"
	"github.com/famvault/server/internal/infra/persistence"
	"github.com/famvault/server/internal/module/security"
	"github.com/famvault/server/internal/shared/cache"
	"github.com/famvault/server/internal/shared/config"
	"github.com/famvault/server/internal/shared/database"
	"github.com/famvault/server/internal/shared/logger"
	"github.com/famvault/server/internal/utils/metrics"
	"github.com/famvault/server/internal/utils/middleware"
)

// App wires configuration, storage, domains and the HTTP surface together.
type App struct {
	config   *config.Config
	db       *gorm.DB
	redis    redis.UniversalClient
	router   *gin.Engine
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	events security.EventRecorder

	userService   *user.Service
	familyDomain  *family.Domain
	recordDomain  *record.Domain
	chatService   *ai.ChatService
	tracker       *ai.Tracker
	notifications *notification.Service
	sink          *notify.Sink
}

// New creates a fully wired application.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &App{config: cfg, logger: log}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := persistence.Migrate(db); err != nil {
		return nil, err
	}
	app.db = db

	// Redis is optional: without it the security event recorder is disabled
	// and rejected tokens are only logged.
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis connection failed, security counters disabled", zap.Error(err))
		} else {
			app.redis = redisClient
			app.events = security.NewRedisRecorder(redisClient, security.DefaultRecorderConfig(), log)
		}
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New("famvault", app.registry)

	if err := app.initDomains(); err != nil {
		return nil, err
	}
	if err := app.setupRouter(); err != nil {
		return nil, err
	}

	return app, nil
}

// initDomains builds repositories, domains and outbound adapters.
func (a *App) initDomains() error {
	userRepo := persistence.NewUserRepository(a.db)
	edgeRepo := persistence.NewFamilyEdgeRepository(a.db)
	invitationRepo := persistence.NewFamilyInvitationRepository(a.db)
	recordRepo := persistence.NewRecordRepository(a.db)
	documentRepo := persistence.NewDocumentRepository(a.db)
	interactionRepo := persistence.NewInteractionRepository(a.db)
	usageRepo := persistence.NewUsageStatsRepository(a.db)
	notificationRepo := persistence.NewNotificationRepository(a.db)

	a.userService = user.NewService(userRepo, a.logger)
	userLookup := user.NewFamilyLookup(a.userService)

	a.familyDomain = family.NewDomain(edgeRepo, invitationRepo, userLookup, family.DefaultConfig(), a.logger)
	a.notifications = notification.NewService(notificationRepo, a.logger)
	a.sink = notify.NewSink(notificationRepo, userLookup, a.logger)

	store, err := s3.NewDocumentStore(a.config.Storage)
	if err != nil {
		return fmt.Errorf("init document store: %w", err)
	}

	access := &meteredAccess{
		resolver: family.NewResolver(edgeRepo),
		metrics:  a.metrics,
	}
	a.recordDomain = record.NewDomain(recordRepo, documentRepo, store, access, a.sink, a.logger)

	registry := ai.NewRegistry()
	registry.Register(aiprovider.NewOpenAIAdapter(nil, a.config.AI.OpenAIBaseURL, a.config.AI.OpenAIAPIKey))
	registry.Register(aiprovider.NewAnthropicAdapter(nil, a.config.AI.AnthropicBaseURL, a.config.AI.AnthropicAPIKey))

	router := ai.NewRouter(registry, ai.NewPriceTable(), ai.RouterConfig{
		DefaultProvider: ai.ProviderName(a.config.AI.DefaultProvider),
		StandardModel:   a.config.AI.StandardModel,
		AdvancedModel:   a.config.AI.AdvancedModel,
		ProviderDefaults: map[ai.ProviderName]string{
			ai.ProviderOpenAI:    a.config.AI.StandardModel,
			ai.ProviderAnthropic: a.config.AI.AnthropicModel,
		},
		RequestTimeout:   a.config.AI.RequestTimeout,
		MaxTokens:        a.config.AI.MaxTokens,
		FailureThreshold: a.config.AI.FailureThreshold,
		CircuitTimeout:   a.config.AI.CircuitTimeout,
	}, a.logger)

	a.tracker = ai.NewTracker(usageRepo, interactionRepo, a.logger)
	a.chatService = ai.NewChatService(router, a.tracker, interactionRepo, a.recordDomain, a.logger)

	return nil
}

// setupRouter builds the gin engine, middleware chain and all routes.
func (a *App) setupRouter() error {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	validator, err := middleware.NewJWTValidator(a.config.Auth)
	if err != nil {
		return fmt.Errorf("init token validator: %w", err)
	}

	api := r.Group("/api/v1", middleware.Auth(validator, a.events, a.logger))

	httpapi.NewChatHandler(a.chatService, a.tracker, a.userService, a.metrics, a.logger).RegisterRoutes(api)
	httpapi.NewRecordHandler(a.recordDomain, a.logger).RegisterRoutes(api)
	httpapi.NewFamilyHandler(a.familyDomain, user.NewFamilyLookup(a.userService), a.sink, a.logger).RegisterRoutes(api)
	httpapi.NewUserHandler(a.userService).RegisterRoutes(api)
	httpapi.NewNotificationHandler(a.notifications).RegisterRoutes(api)

	if a.events != nil {
		admin := api.Group("/admin", middleware.RequireAdmin())
		httpapi.NewSecurityHandler(a.events).RegisterRoutes(admin)
	}

	a.router = r
	return nil
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases external resources.
func (a *App) Stop() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = database.Close(a.db)
	}
}

// meteredAccess counts every cross-user access decision by the tier class the
// operation required.
type meteredAccess struct {
	resolver *family.Resolver
	metrics  *metrics.Metrics
}

func (m *meteredAccess) CanAccess(ctx context.Context, actorID, ownerID uuid.UUID, required family.PermissionSet) (bool, error) {
	ok, err := m.resolver.CanAccess(ctx, actorID, ownerID, required)
	if err != nil {
		return ok, err
	}
	m.metrics.RecordAccessDecision(tierClass(required), ok)
	return ok, nil
}

// tierClass names a qualifying set by its weakest listed tier. The canonical
// sets are view {view,edit,admin}, edit {edit,admin} and admin {admin}.
func tierClass(required family.PermissionSet) string {
	switch {
	case required.Contains(family.PermissionView):
		return "view"
	case required.Contains(family.PermissionEdit):
		return "edit"
	default:
		return "admin"
	}
}
