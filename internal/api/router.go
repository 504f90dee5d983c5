package api

import (
	"net/http" // HTTP status codes

	"bingo_ledger/internal/authz"      // Route-level permission checks
	"bingo_ledger/internal/domain"     // Roles
	"bingo_ledger/internal/middleware" // Auth and request logging
	"bingo_ledger/internal/service"    // Business operations

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics exposition
)

// Services bundles what the handlers need
type Services struct {
	Auth   *service.AuthService
	Users  *service.UserService
	Ledger *service.LedgerService
	Cards  *service.CardService
}

// RouterOptions tunes the HTTP surface
type RouterOptions struct {
	BootstrapEnabled bool     // Mount POST /user/bootstrap
	TrustedProxies   []string // Proxies allowed to set client IP headers
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(svc Services, opts RouterOptions) (*gin.Engine, error) {
	registerValidators()

	r := gin.New()                                    // Gin router instance
	r.Use(middleware.RequestLogger(), gin.Recovery()) // Request logging and panic recovery
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }) // Liveness probe
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))                                         // Prometheus metrics

	// Auth routes
	r.POST("/login", LoginHandler(svc.Auth)) // Login endpoint
	if opts.BootstrapEnabled {
		r.POST("/user/bootstrap", BootstrapHandler(svc.Users)) // Unauthenticated create
	}

	auth := middleware.JWTAuthMiddleware(svc.Auth)

	// User routes (protected by JWT)
	userGroup := r.Group("/user", auth)
	userGroup.POST("", middleware.RequireAction(authz.ActionCreateUser), CreateUserHandler(svc.Users))
	userGroup.GET("/me", MeHandler(svc.Users))
	userGroup.GET("/child", MyChildrenHandler(svc.Users))
	userGroup.GET("/child/:role/:id", ChildrenHandler(svc.Users))
	userGroup.POST("/update", UpdateUserHandler(svc.Users))

	// Owner listings
	listing := userGroup.Group("", middleware.RequireAction(authz.ActionListUsers))
	listing.GET("", ListUsersHandler(svc.Users, domain.RoleUser))
	listing.GET("/all-role-users", ListUsersHandler(svc.Users, ""))
	listing.GET("/managers", ListUsersHandler(svc.Users, domain.RoleManager))
	listing.GET("/superagents", ListUsersHandler(svc.Users, domain.RoleSuperagent))

	// Ledger routes (protected by JWT)
	gametGroup := r.Group("/gamet", auth)
	gametGroup.POST("", RecordTransactionHandler(svc.Ledger))
	gametGroup.GET("", middleware.RequireAction(authz.ActionListAllTransactions), ListTransactionsHandler(svc.Ledger))
	gametGroup.GET("/my", ListMyTransactionsHandler(svc.Ledger))
	gametGroup.GET("/my-game-transaction", ListMyTransactionsHandler(svc.Ledger))
	gametGroup.GET("/my/:id", ListUserTransactionsHandler(svc.Ledger))

	// Card routes (protected by JWT)
	cardGroup := r.Group("/cards", auth)
	cardGroup.POST("", FetchCardHandler(svc.Cards))
	cardGroup.POST("/bingo_cards", AssignCardsHandler(svc.Cards))

	return r, nil
}
