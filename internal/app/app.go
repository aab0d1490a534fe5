package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"washhub/internal/cache"
	"washhub/internal/config"
	httpserver "washhub/internal/http"
	"washhub/internal/http/handlers"
	"washhub/internal/http/middleware"
	"washhub/internal/password"
	"washhub/internal/repository"
	"washhub/internal/service"
	"washhub/internal/ws"
	libdb "washhub/libs/db"
	libredis "washhub/libs/redis"
)

// App wires the washhub dependency graph.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN, libdb.PoolSettings{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}

	// Redis is optional: without it lookups skip the cache.
	var redisClient *redis.Client
	var priceCache service.LookupCache
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		priceCache = cache.NewPriceCache(redisClient, cfg.Redis.CacheTTL, logger)
	}

	orgRepo := repository.NewOrganizationRepository(sqlDB)
	branchRepo := repository.NewBranchRepository(sqlDB)
	userRepo := repository.NewUserRepository(sqlDB)
	customerRepo := repository.NewCustomerRepository(sqlDB)
	vehicleRepo := repository.NewVehicleRepository(sqlDB)
	catalogRepo := repository.NewCatalogRepository(sqlDB)
	serviceRepo := repository.NewServiceRepository(sqlDB)
	ruleRepo := repository.NewPricingRuleRepository(sqlDB)

	hasher := password.NewBcryptHasher(cfg.Password.BcryptCost)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	authService := service.NewAuthService(userRepo, orgRepo, hasher, tokens, logger)

	hub := ws.NewHub(cfg.Board.PingInterval, logger)
	pricingService := service.NewPricingService(ruleRepo, branchRepo, priceCache, hub, logger)

	deps := httpserver.RouterDeps{
		Auth:          handlers.NewAuthHandlers(authService, logger),
		Organizations: handlers.NewOrganizationHandlers(orgRepo, logger),
		Branches:      handlers.NewBranchHandlers(branchRepo, logger),
		Users:         handlers.NewUserHandlers(userRepo, hasher, logger),
		Customers:     handlers.NewCustomerHandlers(customerRepo, logger),
		Vehicles:      handlers.NewVehicleHandlers(vehicleRepo, customerRepo, logger),
		Catalog:       handlers.NewCatalogHandlers(catalogRepo, logger),
		Services:      handlers.NewServiceHandlers(serviceRepo, logger),
		Pricing:       handlers.NewPricingHandlers(pricingService, logger),
		Board:         handlers.NewBoardHandler(hub, branchRepo, logger),
		Health:        handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(deps,
		middleware.RequestLogger(logger),
		middleware.Auth(tokens),
	)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
