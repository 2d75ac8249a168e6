package router

import (
	"time"

	"github.com/erp/orderdesk/internal/domain/identity"
	"github.com/erp/orderdesk/internal/infrastructure/config"
	"github.com/erp/orderdesk/internal/infrastructure/logger"
	"github.com/erp/orderdesk/internal/infrastructure/telemetry"
	"github.com/erp/orderdesk/internal/interfaces/http/handler"
	"github.com/erp/orderdesk/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers are the endpoint handlers of the order API
type Handlers struct {
	Auth       *handler.AuthHandler
	Orders     *handler.OrderHandler
	Categories *handler.CategoryHandler
	Products   *handler.ProductHandler
	Suppliers  *handler.PartnerHandler
	Customers  *handler.PartnerHandler
	Warehouses *handler.WarehouseHandler
	Users      *handler.UserHandler
	Stock      *handler.StockHandler
	Dashboard  *handler.DashboardHandler
	Health     *handler.HealthHandler
}

// Options configure the engine built by NewEngine. A nil Tokens leaves the
// API open; an empty TracingService disables request tracing.
type Options struct {
	Logger         *zap.Logger
	HTTP           config.HTTPConfig
	Tokens         middleware.TokenValidator
	Metrics        *telemetry.Metrics
	MetricsPath    string
	LoginLimiter   *middleware.RateLimiter
	TracingService string
}

// NewEngine builds the gin engine serving the order API
func NewEngine(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(logger.Recovery(log))
	if opts.TracingService != "" {
		engine.Use(middleware.Tracing(opts.TracingService, nil)...)
	}
	engine.Use(logger.GinMiddleware(log))
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.GinMiddleware())
	}
	engine.Use(
		middleware.Secure(),
		middleware.CORS(middleware.CORSFromConfig(opts.HTTP)),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)

	engine.GET("/health", h.Health.Health)
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}

	var auth []gin.HandlerFunc
	if opts.Tokens != nil {
		auth = append(auth, middleware.JWTAuth(opts.Tokens, log), middleware.RequireWrite())
	}
	api := NewAPI(engine, "/api/v1", auth...)

	limiter := opts.LoginLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(10, time.Minute)
	}
	api.Add(
		NewResource("/auth").Public().
			Post("/login", middleware.RateLimit(limiter), h.Auth.Login),
		NewResource("/me").Get("", h.Users.Me),
	)

	api.Add(NewResource("/orders").
		Get("", h.Orders.List).
		Post("", h.Orders.Create).
		Get("/:id", h.Orders.GetByID).
		Put("/:id", h.Orders.Update).
		Delete("/:id", h.Orders.Delete).
		Post("/:id/place", h.Orders.Place).
		Post("/:id/cancel", h.Orders.Cancel).
		Get("/:id/fulfillment-summary", h.Orders.Summary).
		Get("/:id/fulfillments", h.Orders.ListFulfillments).
		Post("/:id/fulfillments", h.Orders.RecordFulfillment))

	api.Add(
		NewResource("/categories").
			Get("", h.Categories.List).
			Post("", h.Categories.Create).
			Get("/:id", h.Categories.GetByID).
			Put("/:id", h.Categories.Update).
			Post("/:id/deactivate", h.Categories.Deactivate).
			Delete("/:id", h.Categories.Delete),
		NewResource("/products").
			Get("", h.Products.List).
			Post("", h.Products.Create).
			Get("/sku/:sku", h.Products.GetBySKU).
			Get("/:id", h.Products.GetByID).
			Put("/:id", h.Products.Update).
			Post("/:id/deactivate", h.Products.Deactivate).
			Delete("/:id", h.Products.Delete),
		partnerResource("suppliers", h.Suppliers),
		partnerResource("customers", h.Customers),
		NewResource("/warehouses").
			Get("", h.Warehouses.List).
			Post("", h.Warehouses.Create).
			Get("/:id", h.Warehouses.GetByID).
			Put("/:id", h.Warehouses.Update).
			Post("/:id/deactivate", h.Warehouses.Deactivate).
			Delete("/:id", h.Warehouses.Delete),
	)

	users := NewResource("/users")
	if opts.Tokens != nil {
		users.Guard(middleware.RequireRole(identity.RoleAdmin))
	}
	api.Add(users.
		Get("", h.Users.List).
		Post("", h.Users.Create).
		Get("/:id", h.Users.GetByID).
		Put("/:id", h.Users.Update).
		Post("/:id/deactivate", h.Users.Deactivate))

	api.Add(
		NewResource("/stock").
			Get("", h.Stock.List).
			Get("/transactions", h.Stock.ListTransactions).
			Post("/transfers", h.Stock.Transfer),
		NewResource("/dashboard").
			Get("/sales", h.Dashboard.Sales),
	)

	api.Mount()
	return engine
}

func partnerResource(name string, h *handler.PartnerHandler) *Resource {
	return NewResource("/"+name).
		Get("", h.List).
		Post("", h.Create).
		Get("/:id", h.GetByID).
		Put("/:id", h.Update).
		Post("/:id/deactivate", h.Deactivate).
		Delete("/:id", h.Delete)
}
