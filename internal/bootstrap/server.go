// Package bootstrap wires the order API from configuration: repositories,
// application services, the event bus and the HTTP engine.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	catalogapp "github.com/erp/orderdesk/internal/application/catalog"
	identityapp "github.com/erp/orderdesk/internal/application/identity"
	inventoryapp "github.com/erp/orderdesk/internal/application/inventory"
	partnerapp "github.com/erp/orderdesk/internal/application/partner"
	reportapp "github.com/erp/orderdesk/internal/application/report"
	tradeapp "github.com/erp/orderdesk/internal/application/trade"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/infrastructure/auth"
	"github.com/erp/orderdesk/internal/infrastructure/cache"
	"github.com/erp/orderdesk/internal/infrastructure/config"
	"github.com/erp/orderdesk/internal/infrastructure/event"
	"github.com/erp/orderdesk/internal/infrastructure/persistence"
	"github.com/erp/orderdesk/internal/infrastructure/telemetry"
	"github.com/erp/orderdesk/internal/interfaces/http/handler"
	"github.com/erp/orderdesk/internal/interfaces/http/middleware"
	"github.com/erp/orderdesk/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint
var Version = "dev"

// dashboardCacheTTL bounds how stale the sales dashboard may get between
// order events
const dashboardCacheTTL = time.Minute

// Server is the wired order API
type Server struct {
	Engine  *gin.Engine
	Metrics *telemetry.Metrics
	Users   *identityapp.UserService
	Tokens  *auth.JWTService

	bus         *event.InMemoryEventBus
	idempotency shared.IdempotencyStore
	logger      *zap.Logger
}

// NewServer builds the order API on top of an open database
func NewServer(ctx context.Context, cfg *config.Config, db *persistence.Database, log *zap.Logger) (*Server, error) {
	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	fulfillmentRepo := persistence.NewGormFulfillmentRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, err
	}
	metrics := telemetry.NewMetrics()
	if err := metrics.RegisterDB(sqlDB, cfg.Database.Driver); err != nil {
		return nil, fmt.Errorf("register database metrics: %w", err)
	}
	dashboardCache := cache.NewQueryCache(dashboardCacheTTL)
	if err := metrics.Register(telemetry.NewQueryCacheCollector(dashboardCache, "dashboard")); err != nil {
		return nil, fmt.Errorf("register cache metrics: %w", err)
	}

	idempotency, err := cache.NewIdempotencyStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("idempotency store: %w", err)
	}

	// Event bus: handlers run inside the publishing transaction
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(inventoryapp.NewFulfillmentStockHandler(stockRepo, log))
	bus.Subscribe(tradeapp.NewOrderMetricsHandler(metrics))
	bus.Subscribe(reportapp.NewDashboardInvalidator(dashboardCache))
	if err := bus.Start(ctx); err != nil {
		_ = idempotency.Close()
		return nil, err
	}

	orderService := tradeapp.NewOrderService(orderRepo, fulfillmentRepo, txManager, log)
	orderService.SetEventPublisher(bus)
	orderService.SetReferences(tradeapp.References{
		Products:  productRepo,
		Suppliers: supplierRepo,
		Customers: customerRepo,
	})
	orderService.SetIdempotencyStore(idempotency, shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	})
	orderService.SetMetrics(metrics)

	jwtService := auth.NewJWTService(cfg.JWT)
	userService := identityapp.NewUserService(userRepo, log)

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(identityapp.NewAuthService(userRepo, jwtService, log)),
		Orders:     handler.NewOrderHandler(orderService),
		Categories: handler.NewCategoryHandler(catalogapp.NewCategoryService(categoryRepo)),
		Products:   handler.NewProductHandler(catalogapp.NewProductService(productRepo, categoryRepo, supplierRepo)),
		Suppliers:  handler.NewSupplierHandler(partnerapp.NewSupplierService(supplierRepo)),
		Customers:  handler.NewCustomerHandler(partnerapp.NewCustomerService(customerRepo)),
		Warehouses: handler.NewWarehouseHandler(partnerapp.NewWarehouseService(warehouseRepo)),
		Users:      handler.NewUserHandler(userService),
		Stock:      handler.NewStockHandler(inventoryapp.NewStockService(stockRepo, txManager, log)),
		Dashboard:  handler.NewDashboardHandler(reportapp.NewDashboardService(orderRepo, dashboardCache, log)),
		Health:     handler.NewHealthHandler(db, Version),
	}

	opts := router.Options{
		Logger:       log,
		HTTP:         cfg.HTTP,
		LoginLimiter: middleware.NewRateLimiter(10, time.Minute),
	}
	if cfg.HTTP.AuthEnabled {
		opts.Tokens = jwtService
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = metrics
		opts.MetricsPath = cfg.Metrics.Path
	}
	if cfg.Tracing.Enabled {
		// Spans go to the global provider installed by the caller
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Tracing, cfg.Database.Driver, nil); err != nil {
			_ = bus.Stop(ctx)
			_ = idempotency.Close()
			return nil, fmt.Errorf("database tracing: %w", err)
		}
		opts.TracingService = cfg.App.Name
	}

	return &Server{
		Engine:      router.NewEngine(opts, handlers),
		Metrics:     metrics,
		Users:       userService,
		Tokens:      jwtService,
		bus:         bus,
		idempotency: idempotency,
		logger:      log,
	}, nil
}

// Close stops the event bus and releases the idempotency store
func (s *Server) Close(ctx context.Context) error {
	if err := s.bus.Stop(ctx); err != nil {
		s.logger.Warn("Event bus stop failed", zap.Error(err))
	}
	return s.idempotency.Close()
}
